package catalog

// NFLTeams lists the 32 team abbreviations
var NFLTeams = []string{
	"ARI", "ATL", "BAL", "BUF", "CAR", "CHI", "CIN", "CLE",
	"DAL", "DEN", "DET", "GB", "HOU", "IND", "JAX", "KC",
	"LV", "LAC", "LAR", "MIA", "MIN", "NE", "NO", "NYG",
	"NYJ", "PHI", "PIT", "SF", "SEA", "TB", "TEN", "WAS",
}

// byeWeek spreads teams across weeks 5..14
func byeWeek(teamIndex int) int {
	return 5 + (teamIndex*3)%10
}
