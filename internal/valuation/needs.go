package valuation

import (
	"fmt"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// ComputeNeeds returns, for every configured position, how many more players
// the roster needs to reach its target. Counts are never negative.
func ComputeNeeds(cfg Config, roster []models.Player) map[models.Position]int {
	counts := make(map[models.Position]int)
	for _, p := range roster {
		if _, ok := cfg.RosterTargets[p.Position]; !ok {
			panic(fmt.Sprintf("valuation: roster player %q has unknown position %q", p.ID, p.Position))
		}
		counts[p.Position]++
	}

	needs := make(map[models.Position]int, len(cfg.RosterTargets))
	for pos, target := range cfg.RosterTargets {
		needs[pos] = max(0, target-counts[pos])
	}
	return needs
}
