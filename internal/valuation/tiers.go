package valuation

import (
	"sort"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// ComputeTiers returns a copy of players with Tier set from the VORP
// threshold table. VORP must already be computed.
func ComputeTiers(cfg Config, players []models.Player) []models.Player {
	out := make([]models.Player, len(players))
	for i, p := range players {
		mustKnow(cfg, p)
		out[i] = p.Clone()
		out[i].Tier = TierFor(cfg, p.VORP)
	}
	return out
}

// TierFor maps a VORP value to its tier: 1 plus the number of thresholds
// the value falls below
func TierFor(cfg Config, vorp float64) int {
	tier := 1
	for _, threshold := range cfg.TierThresholds {
		if vorp < threshold {
			tier++
		}
	}
	return tier
}

// TiersByPosition groups players by position then tier. Players inside a
// tier are ordered by VORP descending, then id.
func TiersByPosition(players []models.Player) map[models.Position]map[int][]models.Player {
	out := make(map[models.Position]map[int][]models.Player)
	for _, p := range players {
		if out[p.Position] == nil {
			out[p.Position] = make(map[int][]models.Player)
		}
		out[p.Position][p.Tier] = append(out[p.Position][p.Tier], p)
	}
	for _, tiers := range out {
		for _, group := range tiers {
			sort.SliceStable(group, func(i, j int) bool {
				if group[i].VORP != group[j].VORP {
					return group[i].VORP > group[j].VORP
				}
				return group[i].ID < group[j].ID
			})
		}
	}
	return out
}
