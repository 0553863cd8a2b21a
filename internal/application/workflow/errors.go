package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

var (
	ErrNoNextStep          = errors.New("already at the last step")
	ErrNoPreviousStep      = errors.New("already at the first step")
	ErrReadOnly            = errors.New("session is read-only")
	ErrModeNotAllowed      = errors.New("operation not allowed in this mode")
	ErrNoOrder             = errors.New("session has no order")
	ErrUnknownStep         = errors.New("unknown step")
	ErrOrderCreationFailed = errors.New("order creation failed")
	ErrNotOnLastStep       = errors.New("order can only be submitted from the last step")
)

// DraftCreationError is returned when the server rejects the first draft of a session
type DraftCreationError struct {
	Err error
}

func (e *DraftCreationError) Error() string {
	return fmt.Sprintf("failed to create draft: %v", e.Err)
}

func (e *DraftCreationError) Unwrap() error { return e.Err }

// TabCommitError reports the step-2 tabs that could not be committed.
// Tabs not listed were committed.
type TabCommitError struct {
	OrderID int64
	Failed  map[string]error
	order   []string
}

func (e *TabCommitError) add(tab string, err error) {
	if e.Failed == nil {
		e.Failed = make(map[string]error)
	}
	e.Failed[tab] = err
	e.order = append(e.order, tab)
}

// Tabs returns the failed tabs in commit order
func (e *TabCommitError) Tabs() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

func (e *TabCommitError) Error() string {
	parts := make([]string, 0, len(e.order))
	for _, tab := range e.order {
		parts = append(parts, fmt.Sprintf("%s: %v", tab, e.Failed[tab]))
	}
	return fmt.Sprintf("failed to save sales order tabs of order %d: %s", e.OrderID, strings.Join(parts, "; "))
}

// Unwrap exposes every tab error to errors.Is and errors.As
func (e *TabCommitError) Unwrap() []error {
	errs := make([]error, 0, len(e.order))
	for _, tab := range e.order {
		errs = append(errs, e.Failed[tab])
	}
	return errs
}
