package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/models"
	"github.com/Billy-Davies-2/draft-assistant/internal/session"
)

const maxBodyBytes = 1 << 20

// ProjectionSyncer triggers an immediate projection refresh
type ProjectionSyncer interface {
	SyncNow() error
}

// APIHandlers serves the draft session API
type APIHandlers struct {
	sessions *session.Manager
	syncer   ProjectionSyncer
}

// NewAPIHandlers creates the API handlers. syncer may be nil.
func NewAPIHandlers(sessions *session.Manager, syncer ProjectionSyncer) *APIHandlers {
	return &APIHandlers{sessions: sessions, syncer: syncer}
}

// CreateSession starts a new draft
func (h *APIHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserTeam string   `json:"userTeam"`
		Teams    []string `json:"teams"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			respondError(w, err)
			return
		}
	}

	id, state, err := h.sessions.Create(req.UserTeam, req.Teams)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "state": state})
}

// ListSessions returns every session id
func (h *APIHandlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := h.sessions.List()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

// DeleteSession removes a session
func (h *APIHandlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.sessions.Delete(id); err != nil {
		respondError(w, err)
		return
	}
	logger.Info("Draft session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// GetState returns the session snapshot
func (h *APIHandlers) GetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.sessions.State(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// ListPlayers returns the filtered and sorted player list
func (h *APIHandlers) ListPlayers(w http.ResponseWriter, r *http.Request) {
	filter, sortKey, err := parsePlayerQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}
	players, err := h.sessions.Players(mux.Vars(r)["id"], filter, sortKey)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, players)
}

// GetTiers groups players by position and tier
func (h *APIHandlers) GetTiers(w http.ResponseWriter, r *http.Request) {
	available, err := parseBool(r.URL.Query().Get("available"))
	if err != nil {
		respondError(w, err)
		return
	}
	tiers, err := h.sessions.Tiers(mux.Vars(r)["id"], available)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tiers)
}

// GetAdvice returns recommendations for the user team's next pick
func (h *APIHandlers) GetAdvice(w http.ResponseWriter, r *http.Request) {
	report, err := h.sessions.Advice(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// DraftPick fills the current pick
func (h *APIHandlers) DraftPick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"playerId"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		respondError(w, fmt.Errorf("%w: playerId is required", errBadRequest))
		return
	}

	state, pick, err := h.sessions.DraftPlayer(mux.Vars(r)["id"], req.PlayerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"pick": pick, "state": state})
}

// UndoPick reopens the most recent pick
func (h *APIHandlers) UndoPick(w http.ResponseWriter, r *http.Request) {
	state, err := h.sessions.Undo(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// ResetDraft restores a fresh board
func (h *APIHandlers) ResetDraft(w http.ResponseWriter, r *http.Request) {
	state, err := h.sessions.Reset(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// SetUserTeam changes the team advice is computed for
func (h *APIHandlers) SetUserTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team string `json:"team"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	state, err := h.sessions.SetUserTeam(mux.Vars(r)["id"], req.Team)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// GetRoster lists a team's drafted players, the user team by default
func (h *APIHandlers) GetRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.sessions.Roster(mux.Vars(r)["id"], r.URL.Query().Get("team"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, roster)
}

// SyncProjections runs the projection sync now
func (h *APIHandlers) SyncProjections(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":  "projection sync is not configured",
			"status": http.StatusServiceUnavailable,
		})
		return
	}
	if err := h.syncer.SyncNow(); err != nil {
		respondJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error(), "status": http.StatusBadGateway})
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// parsePlayerQuery reads the filter and sort from the query string. List
// parameters accept repeated keys or comma separated values.
func parsePlayerQuery(r *http.Request) (models.FilterState, models.SortKey, error) {
	q := r.URL.Query()
	var f models.FilterState

	for _, raw := range listParam(q["position"]) {
		pos, err := models.ParsePosition(raw)
		if err != nil {
			return f, "", fmt.Errorf("%w: %v", errBadRequest, err)
		}
		f.Positions = append(f.Positions, pos)
	}
	for _, raw := range listParam(q["injury"]) {
		status, err := models.ParseInjuryStatus(raw)
		if err != nil {
			return f, "", fmt.Errorf("%w: %v", errBadRequest, err)
		}
		f.InjuryStatuses = append(f.InjuryStatuses, status)
	}
	f.Teams = listParam(q["team"])
	f.Search = q.Get("search")

	var err error
	if f.Tier, err = parseIntParam(q.Get("tier"), "tier"); err != nil {
		return f, "", err
	}
	if f.ByeWeek, err = parseIntParam(q.Get("bye"), "bye"); err != nil {
		return f, "", err
	}
	if f.AvailableOnly, err = parseBool(q.Get("available")); err != nil {
		return f, "", err
	}

	sortKey, err := models.ParseSortKey(q.Get("sort"))
	if err != nil {
		return f, "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return f, sortKey, nil
}

func listParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseIntParam(raw, name string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	return &n, nil
}

func parseBool(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", errBadRequest, raw)
	}
	return b, nil
}
