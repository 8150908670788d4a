package draft

import (
	"errors"
	"fmt"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

var (
	// ErrInvalidPick is returned when the named player cannot be drafted
	ErrInvalidPick = errors.New("invalid pick")
	// ErrDraftComplete is returned when no open pick remains
	ErrDraftComplete = errors.New("draft complete")
	// ErrNothingToUndo is returned when no pick has been made yet
	ErrNothingToUndo = errors.New("nothing to undo")
)

// DefaultTeams returns the standard "Team 1".."Team n" names
func DefaultTeams(n int) []string {
	teams := make([]string, n)
	for i := range teams {
		teams[i] = fmt.Sprintf("Team %d", i+1)
	}
	return teams
}

// NewBoard generates the snake draft order. Odd rounds run through the teams
// forward, even rounds backward. Pick numbers are contiguous from 1.
func NewBoard(teams []string, rounds int) []models.DraftPick {
	if len(teams) == 0 || rounds <= 0 {
		return []models.DraftPick{}
	}

	picks := make([]models.DraftPick, 0, len(teams)*rounds)
	number := 1
	for round := 1; round <= rounds; round++ {
		for slot := 0; slot < len(teams); slot++ {
			teamIndex := slot
			if round%2 == 0 {
				teamIndex = len(teams) - 1 - slot
			}
			picks = append(picks, models.DraftPick{
				Round: round,
				Pick:  number,
				Team:  teams[teamIndex],
			})
			number++
		}
	}
	return picks
}

// CurrentPick returns the lowest-numbered open pick. The second result is
// false once every pick is filled.
func CurrentPick(picks []models.DraftPick) (*models.DraftPick, bool) {
	var current *models.DraftPick
	for i := range picks {
		if !picks[i].Open() {
			continue
		}
		if current == nil || picks[i].Pick < current.Pick {
			current = &picks[i]
		}
	}
	return current, current != nil
}

// CurrentRound is the round of the current pick, or the last round when the
// draft is complete
func CurrentRound(picks []models.DraftPick) int {
	if current, ok := CurrentPick(picks); ok {
		return current.Round
	}
	last := 1
	for _, p := range picks {
		if p.Round > last {
			last = p.Round
		}
	}
	return last
}

// CurrentPickNumber is the overall number of the current pick, or one past the
// last pick when the draft is complete
func CurrentPickNumber(picks []models.DraftPick) int {
	if current, ok := CurrentPick(picks); ok {
		return current.Pick
	}
	return len(picks) + 1
}
