package dal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// SQLiteDAL implements DraftDAL using SQLite
type SQLiteDAL struct {
	db *sql.DB
}

// NewSQLiteDAL creates a new SQLite data access layer
func NewSQLiteDAL(dbPath string) (*SQLiteDAL, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	dal := &SQLiteDAL{db: db}
	if err := dal.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite draft store ready", "path", dbPath)
	return dal, nil
}

func (s *SQLiteDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS draft_state (
		session_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (session_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_draft_state_updated_at ON draft_state(updated_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create sqlite schema: %w", err)
	}
	return nil
}

func (s *SQLiteDAL) GetState(sessionID string) (*models.DraftState, error) {
	rows, err := s.db.Query(`SELECT key, value FROM draft_state WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrSessionNotFound
	}
	return decodeState(values)
}

func (s *SQLiteDAL) SaveState(sessionID string, state *models.DraftState) error {
	values, err := encodeState(state)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	for key, value := range values {
		_, err := tx.Exec(`
			INSERT INTO draft_state (session_id, key, value, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, sessionID, key, string(value), now)
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteDAL) DeleteSession(sessionID string) error {
	result, err := s.db.Exec(`DELETE FROM draft_state WHERE session_id = ?`, sessionID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SQLiteDAL) ListSessions() ([]string, error) {
	return listSessions(s.db, `SELECT DISTINCT session_id FROM draft_state ORDER BY session_id`)
}

func (s *SQLiteDAL) Close() error {
	return s.db.Close()
}

func listSessions(db *sql.DB, query string) ([]string, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
