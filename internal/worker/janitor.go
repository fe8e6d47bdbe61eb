// Package worker runs background maintenance for the login state stores.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultCleanupInterval is how often expired login states are removed
const DefaultCleanupInterval = 5 * time.Minute

// StateCleaner removes expired CAS and OAuth states.
// The SQL-backed state stores implement it; redis expires keys itself.
type StateCleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// Janitor periodically removes expired login states.
type Janitor struct {
	cleaner  StateCleaner
	interval time.Duration
	logger   *slog.Logger

	// Internal state
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// JanitorConfig holds configuration for the janitor.
type JanitorConfig struct {
	Cleaner  StateCleaner
	Interval time.Duration
	Logger   *slog.Logger
}

// NewJanitor creates a new state janitor.
func NewJanitor(cfg JanitorConfig) *Janitor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}

	return &Janitor{
		cleaner:  cfg.Cleaner,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the cleanup loop.
// It runs until Stop is called or context is cancelled; either way the
// janitor can be started again afterwards.
func (j *Janitor) Start(ctx context.Context) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return
	}
	j.running = true
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	j.stopCh = stopCh
	j.doneCh = doneCh
	j.mu.Unlock()

	j.logger.Info("state janitor starting", "interval", j.interval)

	go j.loop(ctx, stopCh, doneCh)
}

// Stop gracefully stops the janitor and waits for the loop to exit.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	close(j.stopCh)
	doneCh := j.doneCh
	j.mu.Unlock()

	<-doneCh

	j.logger.Info("state janitor stopped")
}

// RunOnce removes expired states a single time.
func (j *Janitor) RunOnce(ctx context.Context) {
	removed, err := j.cleaner.Cleanup(ctx)
	if err != nil {
		j.logger.Error("failed to clean up login states", "error", err)
		return
	}
	if removed > 0 {
		j.logger.Info("removed expired login states", "count", removed)
	}
}

// Running reports whether the cleanup loop is active
func (j *Janitor) Running() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *Janitor) loop(ctx context.Context, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer func() {
		j.mu.Lock()
		if j.doneCh == doneCh {
			j.running = false
		}
		j.mu.Unlock()
		close(doneCh)
	}()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}
