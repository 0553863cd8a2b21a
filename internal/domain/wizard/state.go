package wizard

import (
	"github.com/garyjia/order-intake/internal/domain/order"
)

// Mode is fixed when a session starts
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
	ModeView   Mode = "view"
	ModeAssign Mode = "assign"
)

// IsValid returns true for the four session modes
func (m Mode) IsValid() bool {
	switch m {
	case ModeCreate, ModeEdit, ModeView, ModeAssign:
		return true
	}
	return false
}

// Status is the transient request status derived from State
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

// State is one wizard session. A State is never modified after Reduce returns
// it; every action produces a new State that shares untouched branches.
type State struct {
	CurrentStep int
	Mode        Mode
	FormData    order.FormTree

	// DraftID is 0 until the first step has been persisted as a draft
	DraftID int64
	// OrderID is set at session start for edit/view/assign, or after finalization
	OrderID   int64
	Submitted bool

	Loading bool
	Error   string
	Success string

	EnabledMaterials map[string]bool
	PODocuments      []order.Document
	StepAssignees    map[int]string
	StepNotes        map[int]string
}

// NewState returns the initial state of a session in mode
func NewState(mode Mode) *State {
	return &State{
		CurrentStep:      order.FirstStep,
		Mode:             mode,
		FormData:         order.FormTree{},
		EnabledMaterials: map[string]bool{},
		PODocuments:      []order.Document{},
		StepAssignees:    map[int]string{},
		StepNotes:        map[int]string{},
	}
}

// Status derives a single status; loading wins over a stale error or success message
func (s *State) Status() Status {
	switch {
	case s.Loading:
		return StatusLoading
	case s.Error != "":
		return StatusError
	case s.Success != "":
		return StatusSuccess
	default:
		return StatusIdle
	}
}

// ReadOnly reports whether the session may no longer write through
func (s *State) ReadOnly() bool {
	return s.Mode == ModeView || s.Submitted
}

// Section returns the named form section, or nil when absent
func (s *State) Section(name string) map[string]any {
	return asMap(s.FormData[name])
}

func (s *State) clone() *State {
	next := *s
	return &next
}
