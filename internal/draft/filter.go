package draft

import (
	"slices"
	"sort"
	"strings"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// Filter returns the players matching every set field of f, in input order.
// Empty sets and nil pointers match everything.
func Filter(players []models.Player, f models.FilterState) []models.Player {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.Player, 0, len(players))
	for _, p := range players {
		if f.AvailableOnly && p.IsDrafted {
			continue
		}
		if len(f.Positions) > 0 && !slices.Contains(f.Positions, p.Position) {
			continue
		}
		if f.Tier != nil && p.Tier != *f.Tier {
			continue
		}
		if f.ByeWeek != nil && p.ByeWeek != *f.ByeWeek {
			continue
		}
		if len(f.Teams) > 0 && !slices.Contains(f.Teams, p.Team) {
			continue
		}
		if len(f.InjuryStatuses) > 0 && !slices.Contains(f.InjuryStatuses, p.InjuryStatus.Normalized()) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Team), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortPlayers returns a sorted copy. ADP sorts ascending, every other key
// descending. Ties fall back to player id.
func SortPlayers(players []models.Player, key models.SortKey) []models.Player {
	out := make([]models.Player, len(players))
	copy(out, players)

	value := func(p models.Player) float64 {
		switch key {
		case models.SortByADP:
			return -p.ADP
		case models.SortByProjectedPoints:
			return p.ProjectedPoints
		case models.SortByCeiling:
			return p.Ceiling
		default:
			return p.VORP
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := value(out[i]), value(out[j])
		if a != b {
			return a > b
		}
		return out[i].ID < out[j].ID
	})
	return out
}
