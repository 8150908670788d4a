package session

import (
	"context"

	"github.com/Billy-Davies-2/draft-assistant/internal/advice"
	"github.com/Billy-Davies-2/draft-assistant/internal/draft"
	"github.com/Billy-Davies-2/draft-assistant/internal/models"
	"github.com/Billy-Davies-2/draft-assistant/internal/valuation"
)

// AdviceReport is the advice for the user's next pick plus where the draft stands
type AdviceReport struct {
	models.DraftAdvice
	Round    int    `json:"round"`
	Pick     int    `json:"pick"`
	Team     string `json:"team"`
	Overview string `json:"overview"`
}

// Advice ranks the available players for the session's user team
func (m *Manager) Advice(ctx context.Context, id string) (AdviceReport, error) {
	state, err := m.store.GetState(id)
	if err != nil {
		return AdviceReport{}, err
	}

	roster := draft.Roster(*state, state.UserTeam)
	available := draft.Available(state.Players)
	round := draft.CurrentRound(state.Picks)
	pick := draft.CurrentPickNumber(state.Picks)

	adv := m.engine.WithConfig(m.Config()).Recommend(ctx, available, roster, round)
	return AdviceReport{
		DraftAdvice: adv,
		Round:       round,
		Pick:        pick,
		Team:        state.UserTeam,
		Overview:    advice.Overview(adv, round, pick),
	}, nil
}

// Players returns the session's players filtered and sorted
func (m *Manager) Players(id string, filter models.FilterState, sortKey models.SortKey) ([]models.Player, error) {
	state, err := m.store.GetState(id)
	if err != nil {
		return nil, err
	}
	return draft.SortPlayers(draft.Filter(state.Players, filter), sortKey), nil
}

// Tiers groups the session's players by position and tier
func (m *Manager) Tiers(id string, availableOnly bool) (map[models.Position]map[int][]models.Player, error) {
	state, err := m.store.GetState(id)
	if err != nil {
		return nil, err
	}
	players := state.Players
	if availableOnly {
		players = draft.Available(players)
	}
	return valuation.TiersByPosition(players), nil
}

// Roster lists a team's drafted players. An empty team means the user team.
func (m *Manager) Roster(id, team string) ([]models.Player, error) {
	state, err := m.store.GetState(id)
	if err != nil {
		return nil, err
	}
	if team == "" {
		team = state.UserTeam
	}
	return draft.Roster(*state, team), nil
}
