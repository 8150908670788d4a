package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// ProjectionSource supplies the latest projections per player
type ProjectionSource interface {
	FetchProjections(ctx context.Context) ([]models.ProjectionUpdate, error)
}

// ProjectionSink applies fetched projections
type ProjectionSink interface {
	UpdateProjections(ctx context.Context, updates []models.ProjectionUpdate) (int, error)
}

// Scheduler runs the projection sync on a cron schedule with a seconds field
type Scheduler struct {
	cron    *cron.Cron
	source  ProjectionSource
	sink    ProjectionSink
	ctx     context.Context
	timeout time.Duration

	mu       sync.Mutex
	lastRun  time.Time
	lastErr  error
	lastSize int
}

// New creates a scheduler. Jobs run with a child of ctx bounded by timeout.
func New(ctx context.Context, source ProjectionSource, sink ProjectionSink, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		source:  source,
		sink:    sink,
		ctx:     ctx,
		timeout: timeout,
	}
}

// Register adds the projection sync job under spec
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { _ = s.SyncNow() }); err != nil {
		return fmt.Errorf("register projection sync: %w", err)
	}
	logger.Info("Projection sync registered", "schedule", spec)
	return nil
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("Scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Scheduler stopped")
}

// SyncNow fetches and applies projections immediately
func (s *Scheduler) SyncNow() error {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	logger.Info("Syncing projections")
	updates, err := s.source.FetchProjections(ctx)
	if err != nil {
		err = fmt.Errorf("fetch projections: %w", err)
		s.record(0, err)
		logger.Error("Failed to sync projections", "error", err)
		return err
	}

	n, err := s.sink.UpdateProjections(ctx, updates)
	s.record(n, err)
	if err != nil {
		logger.Error("Failed to apply projections", "error", err, "updated", n)
		return err
	}
	logger.Info("Projections synced", "fetched", len(updates), "updated", n)
	return nil
}

// LastRun reports when the sync last ran, how many players it updated and
// the error it ended with
func (s *Scheduler) LastRun() (time.Time, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastSize, s.lastErr
}

func (s *Scheduler) record(n int, err error) {
	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastSize = n
	s.lastErr = err
	s.mu.Unlock()
}
