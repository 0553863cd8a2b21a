package workflow

// State is a phase of order finalization
type State string

const (
	StateEditing         State = "EDITING"
	StateCreating        State = "CREATING"
	StatePersistingSteps State = "PERSISTING_STEPS"
	StateNotifying       State = "NOTIFYING"
	StateCleaningUp      State = "CLEANING_UP"
	StateDone            State = "DONE"
	StateFailed          State = "FAILED"
)

var validStates = map[State]bool{
	StateEditing:         true,
	StateCreating:        true,
	StatePersistingSteps: true,
	StateNotifying:       true,
	StateCleaningUp:      true,
	StateDone:            true,
	StateFailed:          true,
}

var terminalStates = map[State]bool{
	StateDone:   true,
	StateFailed: true,
}

// IsTerminal returns true if no further transitions are allowed
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known finalization state
func (s State) IsValid() bool {
	return validStates[s]
}
