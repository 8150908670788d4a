package valuation

import (
	"fmt"
	"sort"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// ComputeVORP returns a copy of players, in the same order, with VORP set to
// projected points minus the positional replacement baseline. The baseline
// is the projected points of the player at the configured baseline rank
// within the position (ties ordered by id), or 0 when the position is
// shallower than that rank.
//
// An unknown position is a caller contract violation and panics.
func ComputeVORP(cfg Config, players []models.Player) []models.Player {
	baselines := Baselines(cfg, players)

	out := make([]models.Player, len(players))
	for i, p := range players {
		out[i] = p.Clone()
		out[i].VORP = p.ProjectedPoints - baselines[p.Position]
	}
	return out
}

// Baselines returns the replacement-level projected points for every
// configured position
func Baselines(cfg Config, players []models.Player) map[models.Position]float64 {
	byPos := make(map[models.Position][]models.Player)
	for _, p := range players {
		mustKnow(cfg, p)
		byPos[p.Position] = append(byPos[p.Position], p)
	}

	baselines := make(map[models.Position]float64, len(cfg.BaselineRanks))
	for pos, rank := range cfg.BaselineRanks {
		group := byPos[pos]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].ProjectedPoints != group[j].ProjectedPoints {
				return group[i].ProjectedPoints > group[j].ProjectedPoints
			}
			return group[i].ID < group[j].ID
		})
		if rank >= 1 && rank <= len(group) {
			baselines[pos] = group[rank-1].ProjectedPoints
		} else {
			baselines[pos] = 0
		}
	}
	return baselines
}

// Revalue runs the full valuation pass (VORP then tiers). Call it after any
// change to the player set or its projections.
func Revalue(cfg Config, players []models.Player) []models.Player {
	return ComputeTiers(cfg, ComputeVORP(cfg, players))
}

func mustKnow(cfg Config, p models.Player) {
	if !p.Position.Valid() {
		panic(fmt.Sprintf("valuation: player %q has unknown position %q", p.ID, p.Position))
	}
	if _, ok := cfg.BaselineRanks[p.Position]; !ok {
		panic(fmt.Sprintf("valuation: no baseline rank configured for position %q", p.Position))
	}
}
