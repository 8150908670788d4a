package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Billy-Davies-2/draft-assistant/internal/auth"
)

// RouterConfig wires the route handlers together
type RouterConfig struct {
	API    *APIHandlers
	Events EventSource
	Hub    *Hub
	Health *Health
	Auth   auth.Provider
}

// NewRouter builds the HTTP routes. Admin routes need an authenticated
// member of the admins group.
func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	router.HandleFunc("/api/health", cfg.Health.Handler).Methods(http.MethodGet)
	router.HandleFunc("/healthz", cfg.Health.Liveness).Methods(http.MethodGet)
	router.HandleFunc("/readyz", cfg.Health.Readiness).Methods(http.MethodGet)

	if cfg.Auth != nil {
		router.HandleFunc("/auth/login", cfg.Auth.LoginHandler)
		router.HandleFunc("/auth/callback", cfg.Auth.CallbackHandler)
		router.HandleFunc("/auth/logout", cfg.Auth.LogoutHandler)
	}

	router.HandleFunc("/api/events", EventsSSE(cfg.Events)).Methods(http.MethodGet)
	if cfg.Hub != nil {
		router.HandleFunc("/ws/events", cfg.Hub.ServeWS).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()
	h := cfg.API

	api.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions", h.ListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/state", h.GetState).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/players", h.ListPlayers).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/tiers", h.GetTiers).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/advice", h.GetAdvice).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/roster", h.GetRoster).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/pick", h.DraftPick).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/undo", h.UndoPick).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/team", h.SetUserTeam).Methods(http.MethodPost)

	admin := api.NewRoute().Subrouter()
	if cfg.Auth != nil {
		admin.Use(func(next http.Handler) http.Handler {
			return cfg.Auth.Middleware(auth.RequireAdmin(next))
		})
	}
	admin.HandleFunc("/sessions/{id}/reset", h.ResetDraft).Methods(http.MethodPost)
	admin.HandleFunc("/sessions/{id}", h.DeleteSession).Methods(http.MethodDelete)
	admin.HandleFunc("/admin/projections/sync", h.SyncProjections).Methods(http.MethodPost)

	return router
}
