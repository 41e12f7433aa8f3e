/*
scheduler.go - Automated overdue sweep scheduler

PURPOSE:
  Periodically marks pending items whose due date has passed as late, so
  stored statuses follow the calendar without anyone pressing a button.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on Start, then on every tick
  - Each run gets its own timeout so a stuck store cannot pile up runs
  - Keeps the outcome of the last run for the admin status endpoint

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour, SWEEP_INTERVAL)
  - Enabled: Whether scheduler is active (default: true, SWEEP_ENABLED)

USAGE:
  scheduler := NewOverdueSweepScheduler(sweeper, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunSweep endpoint (manual sweep)
  - billing/sweeper.go: Sweeper.MarkOverdue
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OverdueMarker is the part of billing.Sweeper the scheduler drives.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context) (int, error)
}

// SweepRun is the outcome of one scheduled sweep.
type SweepRun struct {
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Marked     int       `json:"marked"`
	Error      string    `json:"error,omitempty"`
}

// OverdueSweepScheduler runs the overdue sweep on a ticker.
type OverdueSweepScheduler struct {
	Sweeper       OverdueMarker
	Log           *zap.Logger
	CheckInterval time.Duration
	RunTimeout    time.Duration
	Enabled       bool

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastMu  sync.RWMutex
	lastRun *SweepRun
}

// NewOverdueSweepScheduler creates a new scheduler.
func NewOverdueSweepScheduler(sweeper OverdueMarker, log *zap.Logger) *OverdueSweepScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OverdueSweepScheduler{
		Sweeper:       sweeper,
		Log:           log.Named("scheduler"),
		CheckInterval: 1 * time.Hour,
		RunTimeout:    1 * time.Minute,
		Enabled:       true,
	}
}

// Start begins the scheduler. Calling Start twice is a no-op.
func (s *OverdueSweepScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Log.Info("disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go s.run()

	s.Log.Info("started", zap.Duration("interval", s.CheckInterval))
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *OverdueSweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Log.Info("stopped")
	}
}

// LastRun returns a copy of the last sweep outcome, or nil before the
// first run.
func (s *OverdueSweepScheduler) LastRun() *SweepRun {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()

	if s.lastRun == nil {
		return nil
	}
	run := *s.lastRun
	return &run
}

func (s *OverdueSweepScheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.sweep()

	for {
		select {
		case <-s.ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *OverdueSweepScheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.RunTimeout)
	defer cancel()

	start := time.Now()
	marked, err := s.Sweeper.MarkOverdue(ctx)

	run := &SweepRun{
		StartedAt:  start.UTC(),
		DurationMs: time.Since(start).Milliseconds(),
		Marked:     marked,
	}
	if err != nil {
		run.Error = err.Error()
		s.Log.Error("sweep failed", zap.Int("marked", marked), zap.Error(err))
	} else if marked > 0 {
		s.Log.Info("sweep completed", zap.Int("marked", marked))
	}

	s.lastMu.Lock()
	s.lastRun = run
	s.lastMu.Unlock()
}
