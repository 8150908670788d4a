package catalog

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
	"github.com/Billy-Davies-2/draft-assistant/internal/valuation"
)

type positionCurve struct {
	position models.Position
	count    int
	top      float64
	step     float64
	spread   float64 // floor/ceiling distance as a share of projection
}

var curves = []positionCurve{
	{models.QB, 32, 380, 6.5, 0.18},
	{models.RB, 64, 320, 3.6, 0.25},
	{models.WR, 80, 310, 2.9, 0.25},
	{models.TE, 32, 230, 4.5, 0.22},
	{models.K, 32, 150, 1.6, 0.15},
	{models.DST, 32, 145, 1.8, 0.20},
}

var (
	firstNames = []string{"Marcus", "Tyler", "Jalen", "Andre", "Cole", "Devin", "Isaiah", "Trey", "Xavier", "Brandon", "Caleb", "Darius", "Elijah", "Garrett", "Jordan", "Malik", "Nate", "Quinn", "Rashad", "Shane", "Terrell", "Wes", "Zach"}
	lastNames  = []string{"Mitchell", "Brooks", "Carter", "Hayes", "Porter", "Griffin", "Sutton", "Dawson", "Fletcher", "Holloway", "Jennings", "Lawson", "Monroe", "Pierce", "Reed", "Sanders", "Tate", "Vaughn", "Whitaker", "Young", "Bishop", "Cross", "Ellis", "Foster", "Grant"}
)

// Default returns the built-in catalog: a deterministic player pool covering
// every position and all 32 teams. ADP follows value over replacement.
func Default() []models.Player {
	var players []models.Player
	depth := make(map[string]int)
	seq := 0

	for ci, c := range curves {
		for i := 0; i < c.count; i++ {
			teamIndex := (i*7 + ci*5) % len(NFLTeams)
			if c.position == models.DST {
				teamIndex = i % len(NFLTeams)
			}
			team := NFLTeams[teamIndex]

			points := round1(c.top - c.step*float64(i))
			depthKey := team + string(c.position)
			depth[depthKey]++

			p := models.Player{
				ID:              fmt.Sprintf("%s-%03d", strings.ToLower(string(c.position)), i+1),
				Name:            playerName(c.position, team, seq),
				Position:        c.position,
				Team:            team,
				ByeWeek:         byeWeek(teamIndex),
				ProjectedPoints: points,
				Floor:           round1(points * (1 - c.spread)),
				Ceiling:         round1(points * (1 + c.spread)),
				InjuryStatus:    injuryFor(seq),
				DepthRank:       depth[depthKey],
			}
			p.StartableWeeks = startableWeeks(p.ByeWeek)
			players = append(players, p)
			seq++
		}
	}

	assignADP(players)
	return players
}

func playerName(pos models.Position, team string, seq int) string {
	if pos == models.DST {
		return team + " D/ST"
	}
	return firstNames[seq%len(firstNames)] + " " + lastNames[(seq*7+3)%len(lastNames)]
}

func injuryFor(seq int) models.InjuryStatus {
	switch {
	case seq%41 == 40:
		return models.Out
	case seq%23 == 22:
		return models.Doubtful
	case seq%9 == 8:
		return models.Questionable
	}
	return models.Healthy
}

func startableWeeks(bye int) []int {
	weeks := make([]int, 0, 17)
	for w := 1; w <= 18; w++ {
		if w != bye {
			weeks = append(weeks, w)
		}
	}
	return weeks
}

// assignADP ranks players by VORP so draft position tracks value. VORP itself
// is left for the session to derive.
func assignADP(players []models.Player) {
	valued := valuation.ComputeVORP(valuation.DefaultConfig(), players)
	order := make([]int, len(valued))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := valued[order[a]], valued[order[b]]
		if pa.VORP != pb.VORP {
			return pa.VORP > pb.VORP
		}
		return pa.ID < pb.ID
	})
	for rank, idx := range order {
		players[idx].ADP = round1(float64(rank+1) + float64(idx%5)/10)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
