package valuation

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

func qbs(points ...float64) []models.Player {
	out := make([]models.Player, len(points))
	for i, pts := range points {
		out[i] = models.Player{
			ID:              fmt.Sprintf("qb%02d", i+1),
			Name:            fmt.Sprintf("Quarterback %d", i+1),
			Position:        models.QB,
			ProjectedPoints: pts,
		}
	}
	return out
}

func byID(players []models.Player) map[string]models.Player {
	out := make(map[string]models.Player, len(players))
	for _, p := range players {
		out[p.ID] = p
	}
	return out
}

func TestComputeVORPBaselineRank(t *testing.T) {
	// 15 QBs: 300, 290, ... 160. The 12th best scores 190.
	points := make([]float64, 15)
	for i := range points {
		points[i] = 300 - float64(i)*10
	}
	players := ComputeVORP(DefaultConfig(), qbs(points...))

	require.Len(t, players, 15)
	assert.Equal(t, 0.0, players[11].VORP, "baseline player has zero VORP")
	assert.Equal(t, 110.0, players[0].VORP)
	assert.Equal(t, -30.0, players[14].VORP)
}

func TestComputeVORPScenario(t *testing.T) {
	// 12th ranked QB projects 170, so a 250-point QB is worth 80 over replacement.
	points := []float64{300, 290, 280, 270, 260, 250, 240, 230, 220, 200, 180, 170, 165, 160, 150}
	players := byID(ComputeVORP(DefaultConfig(), qbs(points...)))

	assert.Equal(t, 0.0, players["qb12"].VORP)
	assert.Equal(t, 80.0, players["qb06"].VORP)
}

func TestComputeVORPShallowPositionHasZeroBaseline(t *testing.T) {
	players := ComputeVORP(DefaultConfig(), qbs(300, 200))
	assert.Equal(t, 300.0, players[0].VORP)
	assert.Equal(t, 200.0, players[1].VORP)
}

func TestComputeVORPIsIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	players := qbs(310, 305, 305, 290, 280, 250, 240, 240, 230, 220, 210, 200, 200, 190)

	first := ComputeVORP(cfg, players)
	second := ComputeVORP(cfg, first)
	assert.Equal(t, first, second)
}

func TestComputeVORPDoesNotMutateInput(t *testing.T) {
	players := qbs(300, 250)
	_ = ComputeVORP(DefaultConfig(), players)
	assert.Zero(t, players[0].VORP)
	assert.Zero(t, players[1].VORP)
}

func TestComputeVORPTieBreakIsStable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaselineRanks[models.QB] = 2

	// Two players tie at the baseline rank; the id order makes selection reproducible.
	players := []models.Player{
		{ID: "b", Position: models.QB, ProjectedPoints: 200},
		{ID: "c", Position: models.QB, ProjectedPoints: 250},
		{ID: "a", Position: models.QB, ProjectedPoints: 200},
	}
	shuffled := []models.Player{players[2], players[0], players[1]}

	assert.Equal(t, byID(ComputeVORP(cfg, players)), byID(ComputeVORP(cfg, shuffled)))
}

func TestComputeVORPMonotonicInOwnProjection(t *testing.T) {
	cfg := DefaultConfig()
	base := qbs(300, 290, 280, 270, 260, 250, 240, 230, 220, 210, 200, 190, 180, 170)

	previous := ComputeVORP(cfg, base)[5].VORP
	for bump := 5.0; bump <= 200; bump += 5 {
		changed := make([]models.Player, len(base))
		copy(changed, base)
		changed[5].ProjectedPoints += bump

		got := ComputeVORP(cfg, changed)[5].VORP
		assert.GreaterOrEqual(t, got, previous, "bump %.0f", bump)
		previous = got
	}
}

func TestComputeVORPPanicsOnUnknownPosition(t *testing.T) {
	players := []models.Player{{ID: "x", Position: "LB", ProjectedPoints: 100}}
	assert.Panics(t, func() { ComputeVORP(DefaultConfig(), players) })
}

func TestComputeTiersPanicsOnUnknownPosition(t *testing.T) {
	assert.Panics(t, func() {
		ComputeTiers(DefaultConfig(), []models.Player{{ID: "x", Position: "LB", VORP: 30}})
	})
}

func TestComputeTiersPanicsOnPositionMissingFromTables(t *testing.T) {
	cfg := DefaultConfig()
	delete(cfg.BaselineRanks, models.K)
	assert.Panics(t, func() {
		ComputeTiers(cfg, []models.Player{{ID: "k1", Position: models.K, VORP: 5}})
	})
}

func TestTierFor(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		vorp float64
		tier int
	}{
		{120, 1},
		{50, 1},
		{49.9, 2},
		{25, 2},
		{24, 3},
		{10, 3},
		{9.99, 4},
		{0, 4},
		{-0.1, 5},
		{-80, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.tier, TierFor(cfg, tt.vorp), "vorp %.2f", tt.vorp)
	}
}

func TestComputeTiersMonotonicWithinPosition(t *testing.T) {
	cfg := DefaultConfig()
	players := Revalue(cfg, qbs(400, 360, 330, 320, 300, 290, 280, 270, 266, 262, 260, 255, 250, 240, 200))

	for _, a := range players {
		for _, b := range players {
			if a.VORP > b.VORP {
				assert.LessOrEqual(t, a.Tier, b.Tier, "%s (%.1f) vs %s (%.1f)", a.ID, a.VORP, b.ID, b.VORP)
			}
		}
	}
}

func TestComputeTiersEmptyInput(t *testing.T) {
	assert.Empty(t, ComputeTiers(DefaultConfig(), nil))
	assert.Empty(t, TiersByPosition(nil))
}

func TestTiersByPosition(t *testing.T) {
	players := []models.Player{
		{ID: "a", Position: models.RB, VORP: 30, Tier: 2},
		{ID: "b", Position: models.RB, VORP: 45, Tier: 2},
		{ID: "c", Position: models.WR, VORP: 60, Tier: 1},
	}
	grouped := TiersByPosition(players)

	require.Len(t, grouped[models.RB][2], 2)
	assert.Equal(t, "b", grouped[models.RB][2][0].ID)
	assert.Equal(t, "c", grouped[models.WR][1][0].ID)
	assert.NotContains(t, grouped, models.QB)
}

func TestComputeNeedsScenario(t *testing.T) {
	roster := []models.Player{
		{ID: "1", Position: models.QB},
		{ID: "2", Position: models.RB},
	}
	needs := ComputeNeeds(DefaultConfig(), roster)

	assert.Equal(t, map[models.Position]int{
		models.QB:  1,
		models.RB:  3,
		models.WR:  5,
		models.TE:  2,
		models.K:   1,
		models.DST: 1,
	}, needs)
}

func TestComputeNeedsNeverNegative(t *testing.T) {
	var roster []models.Player
	for i := 0; i < 4; i++ {
		roster = append(roster, models.Player{ID: fmt.Sprintf("k%d", i), Position: models.K})
	}
	needs := ComputeNeeds(DefaultConfig(), roster)
	for pos, n := range needs {
		assert.GreaterOrEqual(t, n, 0, "position %s", pos)
	}
	assert.Equal(t, 0, needs[models.K])
}

func TestComputeNeedsPanicsOnUnknownPosition(t *testing.T) {
	assert.Panics(t, func() {
		ComputeNeeds(DefaultConfig(), []models.Player{{ID: "x", Position: "FLEX"}})
	})
}

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejectsBadTables(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ascending thresholds", func(c *Config) { c.TierThresholds = []float64{0, 10} }},
		{"missing baseline", func(c *Config) { delete(c.BaselineRanks, models.TE) }},
		{"unknown target", func(c *Config) { c.RosterTargets["FLEX"] = 1 }},
		{"zero window", func(c *Config) { c.CandidateWindow = 0 }},
		{"no rounds", func(c *Config) { c.Rounds = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valuation.yaml")
	content := `
baselineRanks:
  QB: 10
tierThresholds: [60, 30, 10, 0]
needBonus: 25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.BaselineRanks[models.QB])
	assert.Equal(t, 24, cfg.BaselineRanks[models.RB], "unlisted positions keep defaults")
	assert.Equal(t, []float64{60, 30, 10, 0}, cfg.TierThresholds)
	assert.Equal(t, 25.0, cfg.NeedBonus)
	assert.Equal(t, 15.0, cfg.InjuryPenalty)
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valuation.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tierThresholds: [1, 2, 3]\n"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.BaselineRanks[models.QB] = 1
	clone.TierThresholds[0] = 99

	assert.Equal(t, 12, cfg.BaselineRanks[models.QB])
	assert.Equal(t, 50.0, cfg.TierThresholds[0])
}
