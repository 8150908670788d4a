package dal

import (
	"sort"
	"sync"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// MemoryDAL implements DraftDAL using in-memory storage
type MemoryDAL struct {
	mu       sync.RWMutex
	sessions map[string]*models.DraftState
}

// NewMemoryDAL creates a new in-memory data access layer
func NewMemoryDAL() *MemoryDAL {
	return &MemoryDAL{sessions: make(map[string]*models.DraftState)}
}

func (m *MemoryDAL) GetState(sessionID string) (*models.DraftState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	// Copy so callers never share slices with the store
	return state.Clone(), nil
}

func (m *MemoryDAL) SaveState(sessionID string, state *models.DraftState) error {
	if state == nil {
		return errNilState
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[sessionID] = state.Clone()
	return nil
}

func (m *MemoryDAL) DeleteSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, sessionID)
	return nil
}

func (m *MemoryDAL) ListSessions() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryDAL) Close() error {
	return nil
}
