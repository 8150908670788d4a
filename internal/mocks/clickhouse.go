package mocks

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// ProjectionSource stands in for ClickHouse in development. Every fetch
// nudges each base projection by up to ±5%, seeded so runs are reproducible.
type ProjectionSource struct {
	mu   sync.Mutex
	base []models.Player
	rng  *rand.Rand
}

// NewProjectionSource creates a source over the given catalog
func NewProjectionSource(base []models.Player, seed int64) *ProjectionSource {
	logger.Info("Using mock projection source", "players", len(base))
	players := make([]models.Player, len(base))
	copy(players, base)
	return &ProjectionSource{base: players, rng: rand.New(rand.NewSource(seed))}
}

// FetchProjections returns one update per base player
func (m *ProjectionSource) FetchProjections(ctx context.Context) ([]models.ProjectionUpdate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	updates := make([]models.ProjectionUpdate, 0, len(m.base))
	for _, p := range m.base {
		factor := 1 + (m.rng.Float64()*0.1 - 0.05)
		points := round1(p.ProjectedPoints * factor)
		floor := round1(p.Floor * factor)
		ceiling := round1(p.Ceiling * factor)
		updates = append(updates, models.ProjectionUpdate{
			PlayerID:        p.ID,
			ProjectedPoints: points,
			Floor:           &floor,
			Ceiling:         &ceiling,
		})
	}
	return updates, nil
}

// Close is a no-op
func (m *ProjectionSource) Close() error {
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
