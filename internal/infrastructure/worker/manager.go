package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Worker is a background job with an explicit lifecycle
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
	Name() string
}

// WorkerState is where a supervised worker is in its lifecycle
type WorkerState string

const (
	StateIdle    WorkerState = "idle"
	StateRunning WorkerState = "running"
	StateFailed  WorkerState = "failed"
	StateStopped WorkerState = "stopped"
)

// WorkerStatus is one row of Supervisor.Status
type WorkerStatus struct {
	Name  string
	State WorkerState
	Err   error
}

type supervised struct {
	worker Worker
	state  WorkerState
	err    error
}

// Supervisor starts workers in the order they were added and stops them in
// reverse. A failed start unwinds the workers already running.
type Supervisor struct {
	logger *zap.Logger

	mu      sync.Mutex
	entries []*supervised
	running bool
	cancel  context.CancelFunc
}

// NewSupervisor creates an empty supervisor
func NewSupervisor(logger *zap.Logger) *Supervisor {
	return &Supervisor{logger: logger}
}

// Add registers w. Workers added while running start with the next Start.
func (s *Supervisor) Add(w Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, &supervised{worker: w, state: StateIdle})
	s.logger.Info("Worker registered",
		zap.String("worker_name", w.Name()),
		zap.Int("total_workers", len(s.entries)))
}

// Start starts every registered worker under a context derived from ctx
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("workers already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.logger.Info("Starting workers", zap.Int("count", len(s.entries)))

	for i, e := range s.entries {
		if err := e.worker.Start(runCtx); err != nil {
			e.state, e.err = StateFailed, err
			s.logger.Error("Failed to start worker",
				zap.String("worker_name", e.worker.Name()),
				zap.Error(err))
			cancel()
			_ = s.stopRange(i - 1)
			return fmt.Errorf("start worker %s: %w", e.worker.Name(), err)
		}
		e.state, e.err = StateRunning, nil
	}

	s.cancel = cancel
	s.running = true
	return nil
}

// Stop stops running workers newest first. Stopping an idle supervisor is a
// no-op.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	s.cancel()

	err := s.stopRange(len(s.entries) - 1)
	if err == nil {
		s.logger.Info("All workers stopped")
	}
	return err
}

// stopRange stops entries[last] down to entries[0] that are running; the
// caller holds mu
func (s *Supervisor) stopRange(last int) error {
	var errs []error
	for i := last; i >= 0; i-- {
		e := s.entries[i]
		if e.state != StateRunning {
			continue
		}
		if err := e.worker.Stop(); err != nil {
			e.state, e.err = StateFailed, err
			s.logger.Error("Failed to stop worker",
				zap.String("worker_name", e.worker.Name()),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("stop worker %s: %w", e.worker.Name(), err))
			continue
		}
		e.state = StateStopped
	}
	return errors.Join(errs...)
}

// Running reports whether Start succeeded and Stop has not been called
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status lists every worker with its state, in registration order
func (s *Supervisor) Status() []WorkerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]WorkerStatus, len(s.entries))
	for i, e := range s.entries {
		out[i] = WorkerStatus{Name: e.worker.Name(), State: e.state, Err: e.err}
	}
	return out
}
