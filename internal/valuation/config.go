package valuation

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// Config holds every table the valuation passes and the recommendation
// engine read, so the three calculations always agree with each other.
type Config struct {
	BaselineRanks  map[models.Position]int `yaml:"baselineRanks" json:"baselineRanks"`
	TierThresholds []float64               `yaml:"tierThresholds" json:"tierThresholds"`
	RosterTargets  map[models.Position]int `yaml:"rosterTargets" json:"rosterTargets"`

	NeedBonus            float64 `yaml:"needBonus" json:"needBonus"`
	EarlyRoundPenalty    float64 `yaml:"earlyRoundPenalty" json:"earlyRoundPenalty"`
	EarlyRoundMax        int     `yaml:"earlyRoundMax" json:"earlyRoundMax"`
	EarlyRoundTierCutoff int     `yaml:"earlyRoundTierCutoff" json:"earlyRoundTierCutoff"`
	InjuryPenalty        float64 `yaml:"injuryPenalty" json:"injuryPenalty"`

	CandidateWindow    int `yaml:"candidateWindow" json:"candidateWindow"`
	MaxRecommendations int `yaml:"maxRecommendations" json:"maxRecommendations"`
	MaxAlternatives    int `yaml:"maxAlternatives" json:"maxAlternatives"`

	TeamsPerRound int `yaml:"teamsPerRound" json:"teamsPerRound"`
	Rounds        int `yaml:"rounds" json:"rounds"`
}

// DefaultConfig returns the standard 12-team PPR tables
func DefaultConfig() Config {
	return Config{
		BaselineRanks: map[models.Position]int{
			models.QB:  12,
			models.RB:  24,
			models.WR:  36,
			models.TE:  12,
			models.K:   12,
			models.DST: 12,
		},
		TierThresholds: []float64{50, 25, 10, 0},
		RosterTargets: map[models.Position]int{
			models.QB:  2,
			models.RB:  4,
			models.WR:  5,
			models.TE:  2,
			models.K:   1,
			models.DST: 1,
		},
		NeedBonus:            20,
		EarlyRoundPenalty:    30,
		EarlyRoundMax:        3,
		EarlyRoundTierCutoff: 2,
		InjuryPenalty:        15,
		CandidateWindow:      10,
		MaxRecommendations:   5,
		MaxAlternatives:      2,
		TeamsPerRound:        12,
		Rounds:               16,
	}
}

// LoadConfig reads a YAML tables file on top of the defaults. Keys missing
// from the file keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read valuation config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse valuation config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the tables are complete and consistent
func (c Config) Validate() error {
	var errs []error

	for _, pos := range models.Positions {
		if rank, ok := c.BaselineRanks[pos]; !ok || rank < 1 {
			errs = append(errs, fmt.Errorf("baselineRanks.%s must be >= 1", pos))
		}
		if target, ok := c.RosterTargets[pos]; !ok || target < 0 {
			errs = append(errs, fmt.Errorf("rosterTargets.%s must be >= 0", pos))
		}
	}
	for pos := range c.BaselineRanks {
		if !pos.Valid() {
			errs = append(errs, fmt.Errorf("baselineRanks: unknown position %q", pos))
		}
	}
	for pos := range c.RosterTargets {
		if !pos.Valid() {
			errs = append(errs, fmt.Errorf("rosterTargets: unknown position %q", pos))
		}
	}

	if len(c.TierThresholds) == 0 {
		errs = append(errs, errors.New("tierThresholds must not be empty"))
	}
	for i := 1; i < len(c.TierThresholds); i++ {
		if c.TierThresholds[i] >= c.TierThresholds[i-1] {
			errs = append(errs, fmt.Errorf("tierThresholds must be strictly descending (index %d)", i))
		}
	}

	if c.CandidateWindow < 1 {
		errs = append(errs, errors.New("candidateWindow must be >= 1"))
	}
	if c.MaxRecommendations < 0 || c.MaxAlternatives < 0 {
		errs = append(errs, errors.New("maxRecommendations and maxAlternatives must be >= 0"))
	}
	if c.TeamsPerRound < 1 || c.Rounds < 1 {
		errs = append(errs, errors.New("teamsPerRound and rounds must be >= 1"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid valuation config: %w", errors.Join(errs...))
	}
	return nil
}

// Clone returns a copy that shares no maps or slices with c
func (c Config) Clone() Config {
	out := c
	out.BaselineRanks = make(map[models.Position]int, len(c.BaselineRanks))
	for k, v := range c.BaselineRanks {
		out.BaselineRanks[k] = v
	}
	out.RosterTargets = make(map[models.Position]int, len(c.RosterTargets))
	for k, v := range c.RosterTargets {
		out.RosterTargets[k] = v
	}
	out.TierThresholds = append([]float64(nil), c.TierThresholds...)
	return out
}
