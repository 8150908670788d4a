package catalog

import (
	"math"
	"sort"
)

// Stat keys understood by the default scoring table
const (
	StatPassYards  = "pass_yd"
	StatPassTD     = "pass_td"
	StatInt        = "int"
	StatRushYards  = "rush_yd"
	StatRushTD     = "rush_td"
	StatReceptions = "rec"
	StatRecYards   = "rec_yd"
	StatRecTD      = "rec_td"
	StatFumble     = "fumble"
)

// ScoringSettings maps a stat key to points per unit
type ScoringSettings map[string]float64

// DefaultScoring is full-PPR scoring
func DefaultScoring() ScoringSettings {
	return ScoringSettings{
		StatPassYards:  0.04,
		StatPassTD:     4,
		StatInt:        -2,
		StatRushYards:  0.1,
		StatRushTD:     6,
		StatReceptions: 1,
		StatRecYards:   0.1,
		StatRecTD:      6,
		StatFumble:     -2,
	}
}

// FantasyPoints scores a stat line, rounded to two decimals. Stats without a
// scoring rule are ignored.
func FantasyPoints(stats map[string]float64, scoring ScoringSettings) float64 {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var total float64
	for _, k := range keys {
		if weight, ok := scoring[k]; ok {
			total += stats[k] * weight
		}
	}
	return math.Round(total*100) / 100
}
