package draft

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

var pickTime = time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC)

func newState(teams []string, rounds int) models.DraftState {
	return models.DraftState{
		Players: []models.Player{
			{ID: "p1", Name: "Josh Allen", Position: models.QB, Team: "BUF", ByeWeek: 7, ADP: 20, VORP: 60, Tier: 1, ProjectedPoints: 380, Ceiling: 430},
			{ID: "p2", Name: "Bijan Robinson", Position: models.RB, Team: "ATL", ByeWeek: 5, ADP: 3, VORP: 90, Tier: 1, ProjectedPoints: 320, Ceiling: 360},
			{ID: "p3", Name: "Travis Kelce", Position: models.TE, Team: "KC", ByeWeek: 10, ADP: 40, VORP: 20, Tier: 3, ProjectedPoints: 210, Ceiling: 240, InjuryStatus: models.Questionable},
			{ID: "p4", Name: "Justin Tucker", Position: models.K, Team: "BAL", ByeWeek: 7, ADP: 150, VORP: 5, Tier: 4, ProjectedPoints: 140, Ceiling: 160},
		},
		Picks:    NewBoard(teams, rounds),
		UserTeam: teams[0],
		Teams:    teams,
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestNewBoardSnakeOrder(t *testing.T) {
	board := NewBoard([]string{"A", "B", "C"}, 3)

	require.Len(t, board, 9)
	var order []string
	for i, p := range board {
		assert.Equal(t, i+1, p.Pick, "pick numbers are contiguous from 1")
		assert.True(t, p.Open())
		order = append(order, p.Team)
	}
	assert.Equal(t, []string{"A", "B", "C", "C", "B", "A", "A", "B", "C"}, order)
	assert.Equal(t, 2, board[4].Round)
}

func TestNewBoardEmpty(t *testing.T) {
	assert.Empty(t, NewBoard(nil, 16))
	assert.Empty(t, NewBoard([]string{"A"}, 0))
}

func TestDefaultTeams(t *testing.T) {
	teams := DefaultTeams(12)
	require.Len(t, teams, 12)
	assert.Equal(t, "Team 1", teams[0])
	assert.Equal(t, "Team 12", teams[11])
}

func TestPickFillsCurrentPick(t *testing.T) {
	state := newState([]string{"A", "B"}, 2)

	next, err := Pick(state, "p2", pickTime)
	require.NoError(t, err)

	filled := next.Picks[0]
	require.NotNil(t, filled.Player)
	assert.Equal(t, "p2", filled.Player.ID)
	assert.True(t, filled.Player.IsDrafted)
	assert.Equal(t, pickTime, *filled.Timestamp)

	drafted := next.Players[1]
	assert.True(t, drafted.IsDrafted)
	assert.Equal(t, "A", drafted.DraftedBy)
	assert.Equal(t, 1, drafted.DraftedRound)
	assert.Equal(t, 1, drafted.DraftedPick)

	current, ok := CurrentPick(next.Picks)
	require.True(t, ok)
	assert.Equal(t, 2, current.Pick)
	assert.Equal(t, "B", current.Team)
}

func TestPickDoesNotMutateInput(t *testing.T) {
	state := newState([]string{"A", "B"}, 2)
	before := mustJSON(t, state)

	_, err := Pick(state, "p1", pickTime)
	require.NoError(t, err)

	assert.Equal(t, before, mustJSON(t, state))
}

func TestPickAlreadyDraftedPlayer(t *testing.T) {
	state := newState([]string{"A", "B"}, 2)
	state, err := Pick(state, "p1", pickTime)
	require.NoError(t, err)
	before := mustJSON(t, state)

	after, err := Pick(state, "p1", pickTime.Add(time.Minute))
	assert.ErrorIs(t, err, ErrInvalidPick)
	assert.Equal(t, before, mustJSON(t, after), "rejected pick leaves state unchanged")
	assert.Equal(t, before, mustJSON(t, state))
}

func TestPickPlayerFilledElsewhere(t *testing.T) {
	state := newState([]string{"A", "B"}, 2)
	// A pick snapshot claims p3 even though the player record was not flagged.
	claimed := state.Players[2].Clone()
	state.Picks[0].Player = &claimed
	before := mustJSON(t, state)

	_, err := Pick(state, "p3", pickTime)
	assert.ErrorIs(t, err, ErrInvalidPick)
	assert.Equal(t, before, mustJSON(t, state))
}

func TestPickUnknownPlayer(t *testing.T) {
	state := newState([]string{"A", "B"}, 1)
	_, err := Pick(state, "nobody", pickTime)
	assert.ErrorIs(t, err, ErrInvalidPick)
}

func TestPickDraftComplete(t *testing.T) {
	state := newState([]string{"A", "B"}, 1)
	var err error
	state, err = Pick(state, "p1", pickTime)
	require.NoError(t, err)
	state, err = Pick(state, "p2", pickTime)
	require.NoError(t, err)

	before := mustJSON(t, state)
	_, err = Pick(state, "p3", pickTime)
	assert.ErrorIs(t, err, ErrDraftComplete)
	assert.Equal(t, before, mustJSON(t, state))

	_, ok := CurrentPick(state.Picks)
	assert.False(t, ok)
	assert.Equal(t, 1, CurrentRound(state.Picks))
	assert.Equal(t, 3, CurrentPickNumber(state.Picks))
}

func TestCurrentPickIsRecomputed(t *testing.T) {
	picks := NewBoard([]string{"A", "B", "C"}, 2)
	filled := models.Player{ID: "x"}
	picks[0].Player = &filled
	picks[2].Player = &filled

	current, ok := CurrentPick(picks)
	require.True(t, ok)
	assert.Equal(t, 2, current.Pick)
	assert.Equal(t, 1, CurrentRound(picks))

	picks[1].Player = &filled
	current, ok = CurrentPick(picks)
	require.True(t, ok)
	assert.Equal(t, 4, current.Pick)
	assert.Equal(t, 2, CurrentRound(picks))
}

func TestUndoReopensLastPick(t *testing.T) {
	state := newState([]string{"A", "B"}, 2)
	state, _ = Pick(state, "p1", pickTime)
	state, _ = Pick(state, "p2", pickTime)

	undone, err := Undo(state)
	require.NoError(t, err)

	assert.True(t, undone.Picks[1].Open())
	assert.Nil(t, undone.Picks[1].Timestamp)
	assert.False(t, undone.Players[1].IsDrafted)
	assert.Empty(t, undone.Players[1].DraftedBy)
	assert.True(t, undone.Players[0].IsDrafted, "earlier picks stay filled")

	current, _ := CurrentPick(undone.Picks)
	assert.Equal(t, 2, current.Pick)
	assert.False(t, state.Picks[1].Open(), "undo does not modify its input")
}

func TestUndoNothingToUndo(t *testing.T) {
	state := newState([]string{"A"}, 1)
	_, err := Undo(state)
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestRosterInPickOrder(t *testing.T) {
	state := newState([]string{"A", "B"}, 2)
	for _, id := range []string{"p2", "p1", "p3", "p4"} {
		var err error
		state, err = Pick(state, id, pickTime)
		require.NoError(t, err)
	}

	// Snake: A=1,4 B=2,3
	roster := Roster(state, "A")
	require.Len(t, roster, 2)
	assert.Equal(t, "p2", roster[0].ID)
	assert.Equal(t, "p4", roster[1].ID)

	grouped := RosterByPosition(state, "B")
	assert.Len(t, grouped[models.QB], 1)
	assert.Len(t, grouped[models.TE], 1)
	assert.NotContains(t, grouped, models.RB)

	assert.Empty(t, Roster(state, "C"))
}

func TestAvailable(t *testing.T) {
	state := newState([]string{"A", "B"}, 1)
	state, _ = Pick(state, "p1", pickTime)

	avail := Available(state.Players)
	require.Len(t, avail, 3)
	for _, p := range avail {
		assert.NotEqual(t, "p1", p.ID)
	}
}

func TestFilter(t *testing.T) {
	state := newState([]string{"A", "B"}, 1)
	state, _ = Pick(state, "p2", pickTime)
	tier1, bye7 := 1, 7

	tests := []struct {
		name   string
		filter models.FilterState
		want   []string
	}{
		{"no filter", models.FilterState{}, []string{"p1", "p2", "p3", "p4"}},
		{"available only", models.FilterState{AvailableOnly: true}, []string{"p1", "p3", "p4"}},
		{"positions", models.FilterState{Positions: []models.Position{models.QB, models.TE}}, []string{"p1", "p3"}},
		{"tier", models.FilterState{Tier: &tier1}, []string{"p1", "p2"}},
		{"bye week", models.FilterState{ByeWeek: &bye7}, []string{"p1", "p4"}},
		{"teams", models.FilterState{Teams: []string{"KC", "ATL"}}, []string{"p2", "p3"}},
		{"healthy only", models.FilterState{InjuryStatuses: []models.InjuryStatus{models.Healthy}}, []string{"p1", "p2", "p4"}},
		{"questionable", models.FilterState{InjuryStatuses: []models.InjuryStatus{models.Questionable}}, []string{"p3"}},
		{"search name", models.FilterState{Search: "kel"}, []string{"p3"}},
		{"search team", models.FilterState{Search: "bal"}, []string{"p4"}},
		{"combined", models.FilterState{AvailableOnly: true, Tier: &tier1}, []string{"p1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range Filter(state.Players, tt.filter) {
				got = append(got, p.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortPlayers(t *testing.T) {
	players := newState([]string{"A"}, 1).Players

	ids := func(ps []models.Player) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.ID
		}
		return out
	}

	assert.Equal(t, []string{"p2", "p1", "p3", "p4"}, ids(SortPlayers(players, models.SortByVORP)))
	assert.Equal(t, []string{"p2", "p1", "p3", "p4"}, ids(SortPlayers(players, models.SortByADP)))
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, ids(SortPlayers(players, models.SortByProjectedPoints)))
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, ids(SortPlayers(players, models.SortByCeiling)))
	assert.Equal(t, "p1", players[0].ID, "sorting returns a copy")
}

func TestSortPlayersTieBreakByID(t *testing.T) {
	players := []models.Player{{ID: "c", VORP: 10}, {ID: "a", VORP: 10}, {ID: "b", VORP: 10}}
	sorted := SortPlayers(players, models.SortByVORP)
	assert.Equal(t, "a", sorted[0].ID)
	assert.Equal(t, "b", sorted[1].ID)
	assert.Equal(t, "c", sorted[2].ID)
}
