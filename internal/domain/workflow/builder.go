package workflow

import (
	"context"
	"fmt"
	"time"
)

// GuardFunc decides whether a guarded transition may be taken
type GuardFunc func(ctx context.Context) bool

// StateMachineBuilder collects the transition table of a machine
type StateMachineBuilder interface {
	// Configure returns the configuration of state, creating it on first use
	Configure(state State) StateConfiguration

	// Build returns a new machine in initialState. Machines never share
	// their tables with the builder or with each other.
	Build(initialState State, opts ...MachineOption) StateMachine
}

// StateConfiguration adds outgoing transitions to one state
type StateConfiguration interface {
	Permit(trigger Trigger, toState State) StateConfiguration

	// PermitIf adds a transition taken only when guard passes. Transitions
	// for the same trigger are tried in the order they were added.
	PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration
}

type edge struct {
	to    State
	guard GuardFunc
}

type transitionTable map[State]map[Trigger][]edge

func (t transitionTable) clone() transitionTable {
	out := make(transitionTable, len(t))
	for state, byTrigger := range t {
		copied := make(map[Trigger][]edge, len(byTrigger))
		for trigger, edges := range byTrigger {
			copied[trigger] = append([]edge(nil), edges...)
		}
		out[state] = copied
	}
	return out
}

type builder struct {
	table   transitionTable
	configs map[State]*stateConfig
}

type stateConfig struct {
	from  State
	table transitionTable
}

// NewBuilder creates an empty builder. Invalid states panic: tables are
// static and a typo is a programming error.
func NewBuilder() StateMachineBuilder {
	return &builder{
		table:   make(transitionTable),
		configs: make(map[State]*stateConfig),
	}
}

func (b *builder) Configure(state State) StateConfiguration {
	mustBeValid("state", state)

	if c, ok := b.configs[state]; ok {
		return c
	}
	b.table[state] = make(map[Trigger][]edge)
	c := &stateConfig{from: state, table: b.table}
	b.configs[state] = c
	return c
}

func (b *builder) Build(initialState State, opts ...MachineOption) StateMachine {
	mustBeValid("initial state", initialState)

	m := &machine{
		current: initialState,
		table:   b.table.clone(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	return c.PermitIf(trigger, toState, nil)
}

func (c *stateConfig) PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration {
	mustBeValid("target state", toState)

	c.table[c.from][trigger] = append(c.table[c.from][trigger], edge{to: toState, guard: guard})
	return c
}

func mustBeValid(what string, s State) {
	if !s.IsValid() {
		panic(fmt.Sprintf("invalid %s: %q", what, s))
	}
}
