package dal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// ErrSessionNotFound is returned when no state is stored for a session
var ErrSessionNotFound = errors.New("session not found")

var errNilState = errors.New("nil draft state")

// Keys stored per session. Each value is JSON.
const (
	KeyPlayers  = "players"
	KeyPicks    = "picks"
	KeyUserTeam = "userTeam"
	KeyTeams    = "teams"
)

// DraftDAL defines the interface for the draft-state store. The store is
// opaque key-value storage per session; it never interprets the state.
type DraftDAL interface {
	GetState(sessionID string) (*models.DraftState, error)
	SaveState(sessionID string, state *models.DraftState) error
	DeleteSession(sessionID string) error
	ListSessions() ([]string, error)
	Close() error
}

// encodeState splits a snapshot into its stored keys
func encodeState(state *models.DraftState) (map[string][]byte, error) {
	if state == nil {
		return nil, errNilState
	}
	values := map[string]any{
		KeyPlayers:  state.Players,
		KeyPicks:    state.Picks,
		KeyUserTeam: state.UserTeam,
		KeyTeams:    state.Teams,
	}
	out := make(map[string][]byte, len(values))
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = data
	}
	return out, nil
}

// decodeState rebuilds a snapshot from stored keys. Missing keys decode to
// their zero value.
func decodeState(values map[string][]byte) (*models.DraftState, error) {
	state := &models.DraftState{
		Players: []models.Player{},
		Picks:   []models.DraftPick{},
		Teams:   []string{},
	}
	targets := map[string]any{
		KeyPlayers:  &state.Players,
		KeyPicks:    &state.Picks,
		KeyUserTeam: &state.UserTeam,
		KeyTeams:    &state.Teams,
	}
	for key, target := range targets {
		data, ok := values[key]
		if !ok || len(data) == 0 {
			continue
		}
		if err := json.Unmarshal(data, target); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
	}
	return state, nil
}
