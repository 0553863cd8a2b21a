package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// StateMachine tracks one finalization run
type StateMachine interface {
	// State returns the current phase
	State() State

	// CanFire reports whether trigger is configured for the current phase.
	// Guards are not evaluated.
	CanFire(trigger Trigger) bool

	// Fire moves to the next phase or returns ErrInvalidTransition / ErrGuardFailed
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers lists the triggers configured for the current phase, sorted
	PermittedTriggers() []Trigger

	// History returns the transitions taken so far, oldest first
	History() []Transition
}

// Transition is one phase change of a machine
type Transition struct {
	From    State
	To      State
	Trigger Trigger
	At      time.Time
}

// MachineOption configures a machine at Build time
type MachineOption func(*machine)

// WithClock stamps transitions with now instead of time.Now
func WithClock(now func() time.Time) MachineOption {
	return func(m *machine) {
		m.now = now
	}
}

type machine struct {
	current State
	table   transitionTable
	history []Transition
	now     func() time.Time
}

func (m *machine) State() State {
	return m.current
}

func (m *machine) CanFire(trigger Trigger) bool {
	return len(m.table[m.current][trigger]) > 0
}

func (m *machine) Fire(ctx context.Context, trigger Trigger) error {
	if m.current.IsTerminal() {
		return fmt.Errorf("%w: %w (%s)", ErrInvalidTransition, ErrFinished, m.current)
	}

	edges := m.table[m.current][trigger]
	if len(edges) == 0 {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.current)
	}

	// first edge whose guard passes wins
	for _, e := range edges {
		if e.guard != nil && !e.guard(ctx) {
			continue
		}
		m.history = append(m.history, Transition{
			From:    m.current,
			To:      e.to,
			Trigger: trigger,
			At:      m.now(),
		})
		m.current = e.to
		return nil
	}

	return fmt.Errorf("%w: %s from %s", ErrGuardFailed, trigger, m.current)
}

func (m *machine) PermittedTriggers() []Trigger {
	triggers := make([]Trigger, 0, len(m.table[m.current]))
	for trigger, edges := range m.table[m.current] {
		if len(edges) > 0 {
			triggers = append(triggers, trigger)
		}
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}

func (m *machine) History() []Transition {
	out := make([]Transition, len(m.history))
	copy(out, m.history)
	return out
}
