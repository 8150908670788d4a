package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Billy-Davies-2/draft-assistant/internal/dal"
	"github.com/Billy-Davies-2/draft-assistant/internal/draft"
	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/session"
)

// errBadRequest marks malformed input from the client
var errBadRequest = errors.New("bad request")

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	}
	respondJSON(w, status, map[string]any{
		"error":  err.Error(),
		"status": status,
	})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, dal.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, draft.ErrInvalidPick),
		errors.Is(err, draft.ErrDraftComplete),
		errors.Is(err, draft.ErrNothingToUndo):
		return http.StatusConflict
	case errors.Is(err, session.ErrInvalidTeam), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
