package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/draft-assistant/internal/advice"
	"github.com/Billy-Davies-2/draft-assistant/internal/dal"
	"github.com/Billy-Davies-2/draft-assistant/internal/draft"
	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/models"
	"github.com/Billy-Davies-2/draft-assistant/internal/pubsub"
	"github.com/Billy-Davies-2/draft-assistant/internal/valuation"
)

func init() {
	logger.Init()
}

var fixedNow = time.Date(2026, 8, 30, 20, 0, 0, 0, time.UTC)

func testCatalog() []models.Player {
	var players []models.Player
	for _, pos := range models.Positions {
		for i := 0; i < 14; i++ {
			players = append(players, models.Player{
				ID:              fmt.Sprintf("%s%02d", pos, i),
				Name:            fmt.Sprintf("%s Player %d", pos, i),
				Position:        pos,
				Team:            "KC",
				ByeWeek:         6,
				ProjectedPoints: float64(300 - i*10),
			})
		}
	}
	return players
}

func newManager(t *testing.T) (*Manager, *pubsub.MockNATSPubSub) {
	t.Helper()
	cfg := valuation.DefaultConfig()
	cfg.TeamsPerRound = 4
	cfg.Rounds = 3
	events := pubsub.NewMockNATSPubSub()
	engine := advice.NewEngine(cfg, nil)
	return NewManager(dal.NewMemoryDAL(), events, testCatalog(), engine, WithClock(func() time.Time { return fixedNow })), events
}

func eventTypes(events *pubsub.MockNATSPubSub) []string {
	var out []string
	for _, e := range events.History() {
		out = append(out, e.Type)
	}
	return out
}

func TestCreateSession(t *testing.T) {
	m, events := newManager(t)

	id, state, err := m.Create("", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, []string{"Team 1", "Team 2", "Team 3", "Team 4"}, state.Teams)
	assert.Equal(t, "Team 1", state.UserTeam)
	assert.Len(t, state.Picks, 12)

	// QB00 projects 300, the 12th QB projects 190
	for _, p := range state.Players {
		if p.ID == "QB00" {
			assert.Equal(t, 110.0, p.VORP)
			assert.Equal(t, 1, p.Tier)
		}
	}

	ids, err := m.List()
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)
	assert.Equal(t, []string{pubsub.EventSession}, eventTypes(events))
}

func TestCreateRejectsUnknownUserTeam(t *testing.T) {
	m, _ := newManager(t)
	_, _, err := m.Create("Team 9", []string{"A", "B"})
	assert.ErrorIs(t, err, ErrInvalidTeam)
}

func TestCreateRejectsDuplicateOrBlankTeams(t *testing.T) {
	m, events := newManager(t)

	for _, teams := range [][]string{
		{"A", "A"},
		{"A", "B", "A"},
		{"A", ""},
		{"A", "  "},
	} {
		_, _, err := m.Create("A", teams)
		assert.ErrorIs(t, err, ErrInvalidTeam, "teams %q", teams)
	}

	ids, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, events.History())
}

func TestDraftPlayerPersistsAndPublishes(t *testing.T) {
	m, events := newManager(t)
	id, _, err := m.Create("B", []string{"A", "B"})
	require.NoError(t, err)

	state, pick, err := m.DraftPlayer(id, "RB00")
	require.NoError(t, err)
	assert.Equal(t, 1, pick.Pick)
	assert.Equal(t, "A", pick.Team)
	assert.Equal(t, fixedNow, *pick.Timestamp)

	stored, err := m.State(id)
	require.NoError(t, err)
	assert.Equal(t, state, stored)

	history := events.History()
	require.Len(t, history, 2)
	assert.Equal(t, pubsub.EventPick, history[1].Type)
	assert.Equal(t, id, history[1].SessionID)
	assert.Equal(t, "RB00", history[1].Payload["playerId"])
}

func TestDraftPlayerErrorsLeaveStateUnchanged(t *testing.T) {
	m, events := newManager(t)
	id, _, err := m.Create("", nil)
	require.NoError(t, err)
	_, _, err = m.DraftPlayer(id, "WR00")
	require.NoError(t, err)

	before, err := m.State(id)
	require.NoError(t, err)

	_, _, err = m.DraftPlayer(id, "WR00")
	assert.ErrorIs(t, err, draft.ErrInvalidPick)
	_, _, err = m.DraftPlayer(id, "nobody")
	assert.ErrorIs(t, err, draft.ErrInvalidPick)

	after, err := m.State(id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, events.History(), 2, "rejected picks publish nothing")
}

func TestDraftPlayerUnknownSession(t *testing.T) {
	m, _ := newManager(t)
	_, _, err := m.DraftPlayer("missing", "QB00")
	assert.ErrorIs(t, err, dal.ErrSessionNotFound)
}

func TestDraftCompletes(t *testing.T) {
	m, _ := newManager(t)
	id, _, err := m.Create("", []string{"A"})
	require.NoError(t, err)

	for _, pid := range []string{"QB00", "RB00", "WR00"} {
		_, _, err := m.DraftPlayer(id, pid)
		require.NoError(t, err)
	}
	_, _, err = m.DraftPlayer(id, "TE00")
	assert.ErrorIs(t, err, draft.ErrDraftComplete)
}

func TestUndoAndReset(t *testing.T) {
	m, events := newManager(t)
	id, _, err := m.Create("", nil)
	require.NoError(t, err)

	_, _, err = m.DraftPlayer(id, "QB00")
	require.NoError(t, err)
	_, _, err = m.DraftPlayer(id, "QB01")
	require.NoError(t, err)

	state, err := m.Undo(id)
	require.NoError(t, err)
	current, ok := draft.CurrentPick(state.Picks)
	require.True(t, ok)
	assert.Equal(t, 2, current.Pick)

	state, err = m.Reset(id)
	require.NoError(t, err)
	assert.Empty(t, draft.Roster(*state, "Team 1"))
	for _, p := range state.Players {
		assert.False(t, p.IsDrafted)
	}

	_, err = m.Undo(id)
	assert.ErrorIs(t, err, draft.ErrNothingToUndo)

	assert.Equal(t, []string{
		pubsub.EventSession, pubsub.EventPick, pubsub.EventPick, pubsub.EventUndo, pubsub.EventReset,
	}, eventTypes(events))
}

func TestSetUserTeam(t *testing.T) {
	m, _ := newManager(t)
	id, _, err := m.Create("", []string{"A", "B"})
	require.NoError(t, err)

	state, err := m.SetUserTeam(id, "B")
	require.NoError(t, err)
	assert.Equal(t, "B", state.UserTeam)

	_, err = m.SetUserTeam(id, "Z")
	assert.ErrorIs(t, err, ErrInvalidTeam)
}

func TestAdviceUsesUserRosterAndRound(t *testing.T) {
	m, _ := newManager(t)
	id, _, err := m.Create("A", []string{"A", "B"})
	require.NoError(t, err)

	// A takes QB00, B takes two, A is on the clock in round 2
	for _, pid := range []string{"QB00", "RB00", "RB01"} {
		_, _, err := m.DraftPlayer(id, pid)
		require.NoError(t, err)
	}

	report, err := m.Advice(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Round)
	assert.Equal(t, 4, report.Pick)
	assert.Equal(t, "A", report.Team)
	require.NotEmpty(t, report.Recommendations)
	for _, rec := range report.Recommendations {
		assert.False(t, rec.Player.IsDrafted)
	}
	assert.Equal(t, advice.FallbackRationale(report.Recommendations[0].Player, 2), report.Rationale)
	assert.Contains(t, report.Overview, "Round 2, Pick 4")
}

func TestPlayersFilterAndSort(t *testing.T) {
	m, _ := newManager(t)
	id, _, err := m.Create("", nil)
	require.NoError(t, err)
	_, _, err = m.DraftPlayer(id, "TE00")
	require.NoError(t, err)

	players, err := m.Players(id, models.FilterState{
		Positions:     []models.Position{models.TE},
		AvailableOnly: true,
	}, models.SortByProjectedPoints)
	require.NoError(t, err)
	require.Len(t, players, 13)
	assert.Equal(t, "TE01", players[0].ID)
}

func TestTiersAndRoster(t *testing.T) {
	m, _ := newManager(t)
	id, _, err := m.Create("", nil)
	require.NoError(t, err)
	_, _, err = m.DraftPlayer(id, "K00")
	require.NoError(t, err)

	all, err := m.Tiers(id, false)
	require.NoError(t, err)
	available, err := m.Tiers(id, true)
	require.NoError(t, err)

	count := func(tiers map[models.Position]map[int][]models.Player) int {
		n := 0
		for _, byTier := range tiers[models.K] {
			n += len(byTier)
		}
		return n
	}
	assert.Equal(t, 14, count(all))
	assert.Equal(t, 13, count(available))

	roster, err := m.Roster(id, "")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "K00", roster[0].ID)
}

func TestUpdateProjectionsRevaluesSessions(t *testing.T) {
	m, events := newManager(t)
	id, _, err := m.Create("", nil)
	require.NoError(t, err)

	out := models.Out
	n, err := m.UpdateProjections(context.Background(), []models.ProjectionUpdate{
		{PlayerID: "QB13", ProjectedPoints: 400, InjuryStatus: &out},
		{PlayerID: "ghost", ProjectedPoints: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	state, err := m.State(id)
	require.NoError(t, err)
	for _, p := range state.Players {
		if p.ID == "QB13" {
			assert.Equal(t, 400.0, p.ProjectedPoints)
			assert.Equal(t, models.Out, p.InjuryStatus)
			assert.Greater(t, p.VORP, 0.0)
		}
	}

	// New sessions start from the refreshed catalog
	_, fresh, err := m.Create("", nil)
	require.NoError(t, err)
	for _, p := range fresh.Players {
		if p.ID == "QB13" {
			assert.Equal(t, 400.0, p.ProjectedPoints)
		}
	}
	assert.Contains(t, eventTypes(events), pubsub.EventProjections)
}

// listFailingDAL fails ListSessions once failList is set
type listFailingDAL struct {
	dal.DraftDAL
	failList bool
}

func (d *listFailingDAL) ListSessions() ([]string, error) {
	if d.failList {
		return nil, errors.New("store offline")
	}
	return d.DraftDAL.ListSessions()
}

func TestUpdateProjectionsLeavesCatalogWhenListFails(t *testing.T) {
	cfg := valuation.DefaultConfig()
	cfg.TeamsPerRound = 4
	cfg.Rounds = 3
	store := &listFailingDAL{DraftDAL: dal.NewMemoryDAL()}
	m := NewManager(store, pubsub.NewMockNATSPubSub(), testCatalog(), advice.NewEngine(cfg, nil))

	store.failList = true
	n, err := m.UpdateProjections(context.Background(), []models.ProjectionUpdate{
		{PlayerID: "QB13", ProjectedPoints: 400},
	})
	require.Error(t, err)
	assert.Zero(t, n)

	store.failList = false
	_, state, err := m.Create("", nil)
	require.NoError(t, err)
	for _, p := range state.Players {
		if p.ID == "QB13" {
			assert.Equal(t, 170.0, p.ProjectedPoints)
		}
	}
}

func TestSetConfigChangesValuation(t *testing.T) {
	m, _ := newManager(t)
	cfg := m.Config().Clone()
	cfg.BaselineRanks[models.QB] = 1
	m.SetConfig(cfg)

	id, _, err := m.Create("", nil)
	require.NoError(t, err)
	require.NoError(t, m.Revalue())

	state, err := m.State(id)
	require.NoError(t, err)
	for _, p := range state.Players {
		if p.ID == "QB00" {
			assert.Equal(t, 0.0, p.VORP)
		}
	}
}
