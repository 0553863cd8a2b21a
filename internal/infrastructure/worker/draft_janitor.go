package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DraftPurger removes drafts not updated within retention
type DraftPurger interface {
	PurgeStale(ctx context.Context, retention time.Duration) (int64, error)
}

// PurgeRecorder counts purged drafts
type PurgeRecorder interface {
	RecordDraftsPurged(n int64)
}

// DraftJanitorConfig holds configuration for the draft janitor
type DraftJanitorConfig struct {
	Interval  time.Duration
	Retention time.Duration
	// Timeout bounds a single sweep
	Timeout time.Duration
}

// DefaultDraftJanitorConfig returns default configuration
func DefaultDraftJanitorConfig() DraftJanitorConfig {
	return DraftJanitorConfig{
		Interval:  time.Hour,
		Retention: 30 * 24 * time.Hour,
		Timeout:   time.Minute,
	}
}

// JanitorStats is a snapshot of the janitor's progress
type JanitorStats struct {
	Sweeps    int
	Purged    int64
	LastSweep time.Time
	LastError error
}

// DraftJanitor periodically removes abandoned drafts. A session that never
// finalizes leaves its draft behind; nothing else deletes it.
type DraftJanitor struct {
	config   DraftJanitorConfig
	purger   DraftPurger
	recorder PurgeRecorder
	logger   *zap.Logger

	mu        sync.RWMutex
	cancel    context.CancelFunc
	done      chan struct{}
	isRunning bool
	stats     JanitorStats
}

// NewDraftJanitor creates a new draft janitor. recorder may be nil.
func NewDraftJanitor(config DraftJanitorConfig, purger DraftPurger, recorder PurgeRecorder, logger *zap.Logger) *DraftJanitor {
	return &DraftJanitor{
		config:   config,
		purger:   purger,
		recorder: recorder,
		logger:   logger,
	}
}

// Start sweeps once and then every Interval until Stop or ctx is done
func (j *DraftJanitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.isRunning {
		return fmt.Errorf("draft janitor already running")
	}
	if j.config.Interval <= 0 {
		return fmt.Errorf("draft janitor interval must be positive, got %s", j.config.Interval)
	}

	runCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.done = make(chan struct{})
	j.isRunning = true

	j.logger.Info("DraftJanitor started",
		zap.Duration("interval", j.config.Interval),
		zap.Duration("retention", j.config.Retention))

	go j.loop(runCtx, j.done)
	return nil
}

// Stop cancels the loop and waits for an in-flight sweep to finish
func (j *DraftJanitor) Stop() error {
	j.mu.Lock()
	if !j.isRunning {
		j.mu.Unlock()
		return nil
	}
	j.isRunning = false
	cancel, done := j.cancel, j.done
	j.mu.Unlock()

	cancel()
	<-done

	stats := j.Stats()
	j.logger.Info("DraftJanitor stopped",
		zap.Int("sweeps", stats.Sweeps),
		zap.Int64("purged", stats.Purged))
	return nil
}

// Name returns the worker name for identification
func (j *DraftJanitor) Name() string {
	return "DraftJanitor"
}

func (j *DraftJanitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		if _, err := j.RunOnce(ctx); err != nil && ctx.Err() == nil {
			j.logger.Error("Failed to purge stale drafts", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single sweep and returns the number of drafts removed
func (j *DraftJanitor) RunOnce(ctx context.Context) (int64, error) {
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	n, err := j.purger.PurgeStale(ctx, j.config.Retention)

	j.mu.Lock()
	j.stats.Sweeps++
	j.stats.LastSweep = time.Now()
	j.stats.LastError = err
	if err == nil {
		j.stats.Purged += n
	}
	j.mu.Unlock()

	if err != nil {
		return 0, err
	}
	if j.recorder != nil {
		j.recorder.RecordDraftsPurged(n)
	}
	if n > 0 {
		j.logger.Info("Stale drafts purged", zap.Int64("count", n))
	}
	return n, nil
}

// Stats returns a snapshot of the janitor's progress
func (j *DraftJanitor) Stats() JanitorStats {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.stats
}
