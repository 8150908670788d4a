package draft

import (
	"fmt"
	"sort"
	"time"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// Pick fills the current pick with the named player and returns the new
// snapshot. The input state is never modified; on error it is returned as is.
func Pick(state models.DraftState, playerID string, now time.Time) (models.DraftState, error) {
	if _, ok := CurrentPick(state.Picks); !ok {
		return state, ErrDraftComplete
	}

	idx := indexOf(state.Players, playerID)
	if idx < 0 {
		return state, fmt.Errorf("%w: unknown player %q", ErrInvalidPick, playerID)
	}
	if state.Players[idx].IsDrafted {
		return state, fmt.Errorf("%w: player %q already drafted", ErrInvalidPick, playerID)
	}
	for _, p := range state.Picks {
		if p.Player != nil && p.Player.ID == playerID {
			return state, fmt.Errorf("%w: player %q already taken at pick %d", ErrInvalidPick, playerID, p.Pick)
		}
	}

	next := *state.Clone()
	current, _ := CurrentPick(next.Picks)

	player := &next.Players[idx]
	player.IsDrafted = true
	player.DraftedBy = current.Team
	player.DraftedRound = current.Round
	player.DraftedPick = current.Pick

	snapshot := player.Clone()
	ts := now
	current.Player = &snapshot
	current.Timestamp = &ts

	return next, nil
}

// Undo reopens the most recent filled pick and returns its player to the pool
func Undo(state models.DraftState) (models.DraftState, error) {
	last := -1
	for i, p := range state.Picks {
		if p.Open() {
			continue
		}
		if last < 0 || p.Pick > state.Picks[last].Pick {
			last = i
		}
	}
	if last < 0 {
		return state, ErrNothingToUndo
	}

	next := *state.Clone()
	pick := &next.Picks[last]
	if idx := indexOf(next.Players, pick.Player.ID); idx >= 0 {
		next.Players[idx].ClearDraft()
	}
	pick.Player = nil
	pick.Timestamp = nil

	return next, nil
}

// Roster lists the players drafted by team, in pick order
func Roster(state models.DraftState, team string) []models.Player {
	picks := make([]models.DraftPick, 0)
	for _, p := range state.Picks {
		if !p.Open() && p.Team == team {
			picks = append(picks, p)
		}
	}
	sort.Slice(picks, func(i, j int) bool { return picks[i].Pick < picks[j].Pick })

	roster := make([]models.Player, 0, len(picks))
	for _, p := range picks {
		roster = append(roster, p.Player.Clone())
	}
	return roster
}

// RosterByPosition groups a team's roster by position, keeping pick order
func RosterByPosition(state models.DraftState, team string) map[models.Position][]models.Player {
	grouped := make(map[models.Position][]models.Player)
	for _, p := range Roster(state, team) {
		grouped[p.Position] = append(grouped[p.Position], p)
	}
	return grouped
}

// Available lists the undrafted players
func Available(players []models.Player) []models.Player {
	out := make([]models.Player, 0, len(players))
	for _, p := range players {
		if !p.IsDrafted {
			out = append(out, p)
		}
	}
	return out
}

func indexOf(players []models.Player, id string) int {
	for i := range players {
		if players[i].ID == id {
			return i
		}
	}
	return -1
}
