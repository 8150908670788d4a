package mocks

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

func init() {
	logger.Init()
}

func TestProjectionSourceIsDeterministic(t *testing.T) {
	base := []models.Player{
		{ID: "a", ProjectedPoints: 300, Floor: 250, Ceiling: 350},
		{ID: "b", ProjectedPoints: 120, Floor: 90, Ceiling: 150},
	}

	first, err := NewProjectionSource(base, 7).FetchProjections(context.Background())
	require.NoError(t, err)
	second, err := NewProjectionSource(base, 7).FetchProjections(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	for i, u := range first {
		assert.Equal(t, base[i].ID, u.PlayerID)
		assert.InDelta(t, base[i].ProjectedPoints, u.ProjectedPoints, base[i].ProjectedPoints*0.051)
	}
}

func TestProjectionSourceHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewProjectionSource(nil, 1).FetchProjections(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockPostgresDAL(t *testing.T) {
	store, err := NewMockPostgresDAL(filepath.Join(t.TempDir(), "mock.db"))
	require.NoError(t, err)
	defer store.Close()

	state := &models.DraftState{UserTeam: "Team 4", Teams: []string{"Team 4"}}
	require.NoError(t, store.SaveState("s", state))

	got, err := store.GetState("s")
	require.NoError(t, err)
	assert.Equal(t, "Team 4", got.UserTeam)
}
