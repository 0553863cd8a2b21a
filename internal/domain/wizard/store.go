package wizard

import "sync"

// Store holds the state of one session. Each session owns its Store; there
// is no shared instance.
type Store struct {
	mu    sync.RWMutex
	state *State
}

// NewStore creates a store starting at initial
func NewStore(initial *State) *Store {
	return &Store{state: initial}
}

// Dispatch reduces action into the current state and returns the result
func (s *Store) Dispatch(actions ...Action) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range actions {
		s.state = Reduce(s.state, a)
	}
	return s.state
}

// State returns the current snapshot
func (s *Store) State() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
