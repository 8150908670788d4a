package catalog

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// LoadFile reads a player catalog from a .csv, .json, .yaml or .yml file
func LoadFile(path string) ([]models.Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var players []models.Player
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		players, err = ReadCSV(f, DefaultScoring())
	case ".json":
		err = json.NewDecoder(f).Decode(&players)
	case ".yaml", ".yml":
		err = yaml.NewDecoder(f).Decode(&players)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	if err := Validate(players); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return players, nil
}

// Validate normalizes loaded players and reports every invalid record.
// Derived and draft fields are cleared.
func Validate(players []models.Player) error {
	if len(players) == 0 {
		return errors.New("catalog is empty")
	}

	var errs []error
	seen := make(map[string]bool, len(players))
	for i := range players {
		p := &players[i]
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("player %d: missing id", i+1))
			continue
		}
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("player %s: duplicate id", p.ID))
		}
		seen[p.ID] = true

		pos, err := models.ParsePosition(string(p.Position))
		if err != nil {
			errs = append(errs, fmt.Errorf("player %s: %w", p.ID, err))
		}
		p.Position = pos

		status, err := models.ParseInjuryStatus(string(p.InjuryStatus))
		if err != nil {
			errs = append(errs, fmt.Errorf("player %s: %w", p.ID, err))
		}
		p.InjuryStatus = status

		if p.ByeWeek < 1 || p.ByeWeek > 18 {
			errs = append(errs, fmt.Errorf("player %s: bye week %d out of range 1..18", p.ID, p.ByeWeek))
		}

		p.VORP, p.Tier = 0, 0
		p.ClearDraft()
	}
	return errors.Join(errs...)
}

// ReadCSV parses a catalog with a header row. Column names are matched
// case-insensitively. A row without projectedPoints is scored from any stat
// columns present (pass_yd, rec, ...).
func ReadCSV(r io.Reader, scoring ScoringSettings) ([]models.Player, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"id", "name", "position", "team"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var players []models.Player
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		get := func(name string) string {
			if i, ok := cols[name]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		p := models.Player{
			ID:           get("id"),
			Name:         get("name"),
			Position:     models.Position(get("position")),
			Team:         strings.ToUpper(get("team")),
			InjuryStatus: models.InjuryStatus(get("injurystatus")),
		}

		nums := map[string]*float64{
			"projectedpoints": &p.ProjectedPoints,
			"adp":             &p.ADP,
			"floor":           &p.Floor,
			"ceiling":         &p.Ceiling,
		}
		for name, dst := range nums {
			if v := get(name); v != "" {
				if *dst, err = strconv.ParseFloat(v, 64); err != nil {
					return nil, fmt.Errorf("line %d: %s: %w", line, name, err)
				}
			}
		}
		ints := map[string]*int{"byeweek": &p.ByeWeek, "depthrank": &p.DepthRank}
		for name, dst := range ints {
			if v := get(name); v != "" {
				if *dst, err = strconv.Atoi(v); err != nil {
					return nil, fmt.Errorf("line %d: %s: %w", line, name, err)
				}
			}
		}

		if get("projectedpoints") == "" {
			stats := make(map[string]float64)
			for stat := range scoring {
				if v := get(stat); v != "" {
					n, err := strconv.ParseFloat(v, 64)
					if err != nil {
						return nil, fmt.Errorf("line %d: %s: %w", line, stat, err)
					}
					stats[stat] = n
				}
			}
			p.ProjectedPoints = FantasyPoints(stats, scoring)
		}

		players = append(players, p)
	}
	return players, nil
}
