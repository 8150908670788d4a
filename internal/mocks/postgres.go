package mocks

import (
	"github.com/Billy-Davies-2/draft-assistant/internal/dal"
	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// MockPostgresDAL stands in for Postgres in development using a SQLite file
type MockPostgresDAL struct {
	*dal.SQLiteDAL
}

// NewMockPostgresDAL opens the SQLite stand-in
func NewMockPostgresDAL(sqliteFile string) (*MockPostgresDAL, error) {
	logger.Info("Using MOCK Postgres (SQLite) for local development", "file", sqliteFile)

	store, err := dal.NewSQLiteDAL(sqliteFile)
	if err != nil {
		return nil, err
	}
	return &MockPostgresDAL{SQLiteDAL: store}, nil
}

// SaveState logs the write before storing it
func (m *MockPostgresDAL) SaveState(sessionID string, state *models.DraftState) error {
	if state != nil {
		logger.Debug("Mock Postgres: saving draft state", "session_id", sessionID, "picks", len(state.Picks))
	}
	return m.SQLiteDAL.SaveState(sessionID, state)
}
