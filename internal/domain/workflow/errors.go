package workflow

import "errors"

var (
	// ErrInvalidTransition means the trigger is not configured for the current phase
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrGuardFailed means every guarded transition for the trigger refused
	ErrGuardFailed = errors.New("guard condition failed")

	// ErrFinished is wrapped into ErrInvalidTransition when the machine is
	// already in a terminal phase
	ErrFinished = errors.New("finalization already finished")
)
