package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Billy-Davies-2/draft-assistant/internal/advice"
	"github.com/Billy-Davies-2/draft-assistant/internal/dal"
	"github.com/Billy-Davies-2/draft-assistant/internal/draft"
	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/models"
	"github.com/Billy-Davies-2/draft-assistant/internal/pubsub"
	"github.com/Billy-Davies-2/draft-assistant/internal/valuation"
)

// ErrInvalidTeam is returned for a team name that is not in the session
var ErrInvalidTeam = errors.New("invalid team")

// Publisher receives an event after every committed mutation
type Publisher interface {
	Publish(pubsub.Event)
}

// Manager is the single writer of draft sessions. Every mutation runs
// load, transition, revalue, save and publish under one lock.
type Manager struct {
	mu      sync.Mutex
	store   dal.DraftDAL
	events  Publisher
	engine  *advice.Engine
	now     func() time.Time
	cfgMu   sync.RWMutex
	cfg     valuation.Config
	catalog []models.Player
}

// Option customizes a Manager
type Option func(*Manager)

// WithClock overrides the pick timestamp source
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager over store. events may be nil.
func NewManager(store dal.DraftDAL, events Publisher, catalog []models.Player, engine *advice.Engine, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		events:  events,
		engine:  engine,
		now:     time.Now,
		cfg:     engine.Config(),
		catalog: cloneAll(catalog),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the active valuation tables
func (m *Manager) Config() valuation.Config {
	m.cfgMu.RLock()
	defer m.cfgMu.RUnlock()
	return m.cfg
}

// SetConfig swaps the valuation tables used from the next pass on
func (m *Manager) SetConfig(cfg valuation.Config) {
	m.cfgMu.Lock()
	m.cfg = cfg.Clone()
	m.cfgMu.Unlock()
	logger.Info("Valuation tables updated", "need_bonus", cfg.NeedBonus, "candidate_window", cfg.CandidateWindow)
}

// Create starts a session. Empty teams uses the default league size and an
// empty userTeam picks the first team. Team names must be unique and
// non-blank since rosters are keyed by name.
func (m *Manager) Create(userTeam string, teams []string) (string, *models.DraftState, error) {
	cfg := m.Config()
	if len(teams) == 0 {
		teams = draft.DefaultTeams(cfg.TeamsPerRound)
	}
	seen := make(map[string]bool, len(teams))
	for _, team := range teams {
		if strings.TrimSpace(team) == "" {
			return "", nil, fmt.Errorf("%w: blank team name", ErrInvalidTeam)
		}
		if seen[team] {
			return "", nil, fmt.Errorf("%w: duplicate team %q", ErrInvalidTeam, team)
		}
		seen[team] = true
	}
	if userTeam == "" {
		userTeam = teams[0]
	}
	if !seen[userTeam] {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidTeam, userTeam)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	state := &models.DraftState{
		Players:  valuation.Revalue(cfg, m.catalogCopy()),
		Picks:    draft.NewBoard(teams, cfg.Rounds),
		UserTeam: userTeam,
		Teams:    slices.Clone(teams),
	}
	if err := m.store.SaveState(id, state); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}

	logger.Info("Draft session created", "session_id", id, "teams", len(teams), "user_team", userTeam)
	m.publish(pubsub.EventSession, id, map[string]any{"userTeam": userTeam, "teams": teams})
	return id, state, nil
}

// List returns every session id
func (m *Manager) List() ([]string, error) {
	return m.store.ListSessions()
}

// State returns the stored snapshot
func (m *Manager) State(id string) (*models.DraftState, error) {
	return m.store.GetState(id)
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.DeleteSession(id)
}

// DraftPlayer fills the current pick with playerID
func (m *Manager) DraftPlayer(id, playerID string) (*models.DraftState, models.DraftPick, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.GetState(id)
	if err != nil {
		return nil, models.DraftPick{}, err
	}
	current, _ := draft.CurrentPick(state.Picks)
	var slot models.DraftPick
	if current != nil {
		slot = *current
	}

	next, err := draft.Pick(*state, playerID, m.now())
	if err != nil {
		logger.Warn("Draft pick rejected", "session_id", id, "player_id", playerID, "error", err)
		return nil, models.DraftPick{}, err
	}
	next.Players = valuation.Revalue(m.Config(), next.Players)

	if err := m.store.SaveState(id, &next); err != nil {
		return nil, models.DraftPick{}, fmt.Errorf("save session: %w", err)
	}

	made := next.Picks[indexOfPick(next.Picks, slot.Pick)]
	logger.Info("Player drafted", "session_id", id, "player_id", playerID, "team", made.Team, "round", made.Round, "pick", made.Pick)
	m.publish(pubsub.EventPick, id, map[string]any{
		"playerId": playerID,
		"team":     made.Team,
		"round":    made.Round,
		"pick":     made.Pick,
	})
	return &next, made, nil
}

// Undo reopens the most recent pick
func (m *Manager) Undo(id string) (*models.DraftState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.GetState(id)
	if err != nil {
		return nil, err
	}
	next, err := draft.Undo(*state)
	if err != nil {
		return nil, err
	}
	next.Players = valuation.Revalue(m.Config(), next.Players)

	if err := m.store.SaveState(id, &next); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	current, _ := draft.CurrentPick(next.Picks)
	logger.Info("Pick undone", "session_id", id, "pick", current.Pick)
	m.publish(pubsub.EventUndo, id, map[string]any{"pick": current.Pick, "team": current.Team})
	return &next, nil
}

// Reset restores the catalog and a fresh board, keeping the teams
func (m *Manager) Reset(id string) (*models.DraftState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.GetState(id)
	if err != nil {
		return nil, err
	}
	cfg := m.Config()
	next := &models.DraftState{
		Players:  valuation.Revalue(cfg, m.catalogCopy()),
		Picks:    draft.NewBoard(state.Teams, cfg.Rounds),
		UserTeam: state.UserTeam,
		Teams:    state.Teams,
	}
	if err := m.store.SaveState(id, next); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	logger.Info("Draft reset", "session_id", id)
	m.publish(pubsub.EventReset, id, nil)
	return next, nil
}

// SetUserTeam changes which team the advice is computed for
func (m *Manager) SetUserTeam(id, team string) (*models.DraftState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.GetState(id)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(state.Teams, team) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTeam, team)
	}
	state.UserTeam = team
	if err := m.store.SaveState(id, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.publish(pubsub.EventUserTeam, id, map[string]any{"userTeam": team})
	return state, nil
}

// UpdateProjections applies refreshed projections to the catalog and to every
// session, then revalues. It returns the number of catalog players updated.
func (m *Manager) UpdateProjections(ctx context.Context, updates []models.ProjectionUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	byID := make(map[string]models.ProjectionUpdate, len(updates))
	for _, u := range updates {
		byID[u.PlayerID] = u
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.store.ListSessions()
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}

	// The catalog is committed only once the session list is read
	catalog := cloneAll(m.catalog)
	updated := applyUpdates(catalog, byID)
	defer func() { m.catalog = catalog }()

	cfg := m.Config()
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		state, err := m.store.GetState(id)
		if err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", id, err))
			continue
		}
		applyUpdates(state.Players, byID)
		state.Players = valuation.Revalue(cfg, state.Players)
		if err := m.store.SaveState(id, state); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", id, err))
		}
	}

	logger.Info("Projections updated", "players", updated, "sessions", len(ids))
	m.publish(pubsub.EventProjections, "", map[string]any{"updated": updated, "sessions": len(ids)})
	return updated, errors.Join(errs...)
}

// Revalue recomputes every session with the active tables
func (m *Manager) Revalue() error {
	return m.updateAll(func(state *models.DraftState, cfg valuation.Config) {
		state.Players = valuation.Revalue(cfg, state.Players)
	})
}

func (m *Manager) updateAll(fn func(*models.DraftState, valuation.Config)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.store.ListSessions()
	if err != nil {
		return err
	}
	cfg := m.Config()
	var errs []error
	for _, id := range ids {
		state, err := m.store.GetState(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fn(state, cfg)
		if err := m.store.SaveState(id, state); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) publish(eventType, sessionID string, payload map[string]any) {
	if m.events == nil {
		return
	}
	m.events.Publish(pubsub.NewEvent(eventType, sessionID, payload))
}

func (m *Manager) catalogCopy() []models.Player {
	return cloneAll(m.catalog)
}

func applyUpdates(players []models.Player, byID map[string]models.ProjectionUpdate) int {
	n := 0
	for i := range players {
		if u, ok := byID[players[i].ID]; ok {
			u.Apply(&players[i])
			n++
		}
	}
	return n
}

func indexOfPick(picks []models.DraftPick, number int) int {
	for i := range picks {
		if picks[i].Pick == number {
			return i
		}
	}
	return 0
}

func cloneAll(players []models.Player) []models.Player {
	out := make([]models.Player, len(players))
	for i := range players {
		out[i] = players[i].Clone()
	}
	return out
}
