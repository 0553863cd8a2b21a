package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/order"
	"github.com/garyjia/order-intake/internal/domain/wizard"
)

// SessionConfig fixes who drives the session and what it works on
type SessionConfig struct {
	Mode wizard.Mode
	// OrderID is required for edit, view and assign
	OrderID int64
	UserID  string
}

// SessionDeps are the collaborators of a session
type SessionDeps struct {
	Drafts    *DraftSynchronizer
	Steps     *StepCommitter
	Finalizer *OrderFinalizer
	Orders    port.OrderAPI
	Logger    Logger
}

// Session drives one wizard run. Navigation persists before it moves: a
// failed write leaves the session on the step it was on. Navigation calls on
// one Session are serialized.
type Session struct {
	cfg   SessionConfig
	deps  SessionDeps
	store *wizard.Store
	nav   sync.Mutex
	now   func() time.Time
}

// NewSession starts a session at step 1
func NewSession(cfg SessionConfig, deps SessionDeps) (*Session, error) {
	if !cfg.Mode.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrModeNotAllowed, cfg.Mode)
	}
	if cfg.Mode != wizard.ModeCreate && cfg.OrderID == 0 {
		return nil, ErrNoOrder
	}

	initial := wizard.NewState(cfg.Mode)
	if cfg.OrderID != 0 {
		initial = wizard.Reduce(initial, wizard.SetOrderID{ID: cfg.OrderID})
	}

	return &Session{
		cfg:   cfg,
		deps:  deps,
		store: wizard.NewStore(initial),
		now:   time.Now,
	}, nil
}

// State returns the current snapshot
func (s *Session) State() *wizard.State {
	return s.store.State()
}

// Edit applies form edits. Read-only sessions reject them.
func (s *Session) Edit(actions ...wizard.Action) (*wizard.State, error) {
	if s.store.State().ReadOnly() {
		return s.store.State(), ErrReadOnly
	}
	return s.store.Dispatch(actions...), nil
}

// Next persists the current step as the mode requires and advances one step.
// Drafts record the step being entered, so a resumed session opens where
// this one left off.
func (s *Session) Next(ctx context.Context) error {
	s.nav.Lock()
	defer s.nav.Unlock()

	st := s.store.State()
	if st.CurrentStep >= order.LastStep {
		return ErrNoNextStep
	}
	target := st.CurrentStep + 1

	s.begin()
	defer s.store.Dispatch(wizard.SetLoading{Loading: false})

	switch st.Mode {
	case wizard.ModeCreate:
		if st.CurrentStep == order.FirstStep && st.DraftID == 0 {
			id, err := s.deps.Drafts.CreateDraft(ctx, st.FormData, target)
			if err != nil {
				return s.fail(err)
			}
			s.store.Dispatch(wizard.SetDraftID{ID: id}, wizard.SetSuccess{Message: "Draft created successfully"})
		} else if err := s.saveDraft(ctx, st, target); err != nil {
			return s.fail(err)
		}

	case wizard.ModeEdit:
		if _, err := s.deps.Steps.CommitStep(ctx, st.CurrentStep, st.OrderID, st.FormData); err != nil {
			return s.fail(err)
		}
		if err := s.saveDraft(ctx, st, target); err != nil {
			return s.fail(err)
		}
	}

	s.store.Dispatch(wizard.SetStep{Step: target})
	return nil
}

// Previous steps back. Create and edit sessions holding a draft save it with
// the earlier step first.
func (s *Session) Previous(ctx context.Context) error {
	s.nav.Lock()
	defer s.nav.Unlock()

	st := s.store.State()
	if st.CurrentStep <= order.FirstStep {
		return ErrNoPreviousStep
	}
	target := st.CurrentStep - 1

	if st.Mode == wizard.ModeCreate || st.Mode == wizard.ModeEdit {
		s.begin()
		defer s.store.Dispatch(wizard.SetLoading{Loading: false})
		if err := s.saveDraft(ctx, st, target); err != nil {
			return s.fail(err)
		}
	}

	s.store.Dispatch(wizard.SetStep{Step: target})
	return nil
}

// Submit finalizes a create session or commits the last step of an edit
// session. The result is nil for edit sessions.
func (s *Session) Submit(ctx context.Context) (*FinalizeResult, error) {
	s.nav.Lock()
	defer s.nav.Unlock()

	st := s.store.State()
	if st.ReadOnly() {
		return nil, ErrReadOnly
	}

	s.begin()
	defer s.store.Dispatch(wizard.SetLoading{Loading: false})

	switch st.Mode {
	case wizard.ModeCreate:
		if st.CurrentStep != order.LastStep {
			return nil, s.fail(fmt.Errorf("%w: on step %d", ErrNotOnLastStep, st.CurrentStep))
		}
		result, err := s.deps.Finalizer.Finalize(ctx, FinalizeInput{
			Form:      st.FormData,
			DraftID:   st.DraftID,
			CreatedBy: s.cfg.UserID,
			Assignees: st.StepAssignees,
			Notes:     st.StepNotes,
		})
		if err != nil {
			return result, s.fail(err)
		}
		s.store.Dispatch(
			wizard.SetOrderID{ID: result.OrderID},
			wizard.SetDraftID{ID: 0},
			wizard.SetSubmitted{Submitted: true},
			wizard.SetSuccess{Message: result.Summary()},
		)
		return result, nil

	case wizard.ModeEdit:
		if _, err := s.deps.Steps.CommitStep(ctx, st.CurrentStep, st.OrderID, st.FormData); err != nil {
			return nil, s.fail(err)
		}
		fd, err := order.DecodeForm(st.FormData)
		if err != nil {
			return nil, s.fail(err)
		}
		if err := s.deps.Orders.UpdateOrder(ctx, st.OrderID, order.BuildSummary(fd, s.cfg.UserID, s.now())); err != nil {
			return nil, s.fail(err)
		}
		s.store.Dispatch(
			wizard.SetSubmitted{Submitted: true},
			wizard.SetSuccess{Message: fmt.Sprintf("Sales order #%d updated successfully", st.OrderID)},
		)
		return nil, nil

	default:
		return nil, ErrModeNotAllowed
	}
}

// Assign hands the order to assignee. Only assign sessions may do this.
func (s *Session) Assign(ctx context.Context, assignee string) error {
	s.nav.Lock()
	defer s.nav.Unlock()

	st := s.store.State()
	if st.Mode != wizard.ModeAssign {
		return ErrModeNotAllowed
	}

	s.begin()
	defer s.store.Dispatch(wizard.SetLoading{Loading: false})

	err := s.deps.Orders.AssignOrder(ctx, st.OrderID, port.AssignRequest{
		AssignedTo: assignee,
		AssignedAt: s.now(),
	})
	if err != nil {
		return s.fail(err)
	}

	s.store.Dispatch(wizard.SetSuccess{Message: fmt.Sprintf("Sales order #%d assigned to %s", st.OrderID, assignee)})
	return nil
}

// Load reads back every saved step of the session's order
func (s *Session) Load(ctx context.Context) ([]StepData, error) {
	st := s.store.State()
	if st.Mode == wizard.ModeCreate {
		return nil, ErrModeNotAllowed
	}

	s.begin()
	defer s.store.Dispatch(wizard.SetLoading{Loading: false})

	steps, err := s.deps.Steps.FetchAll(ctx, st.OrderID)
	if err != nil {
		return nil, s.fail(err)
	}
	return steps, nil
}

// Resume continues a create or edit session from a stored draft. An edit
// session keeps its order and saves the draft on every navigation from then on.
func (s *Session) Resume(ctx context.Context, draftID int64) error {
	s.nav.Lock()
	defer s.nav.Unlock()

	st := s.store.State()
	if st.Mode != wizard.ModeCreate && st.Mode != wizard.ModeEdit {
		return ErrModeNotAllowed
	}

	s.begin()
	defer s.store.Dispatch(wizard.SetLoading{Loading: false})

	draft, err := s.deps.Drafts.LoadDraft(ctx, draftID)
	if err != nil {
		return s.fail(err)
	}

	actions := []wizard.Action{
		wizard.SetDraftID{ID: draftID},
		wizard.SetStep{Step: draft.CurrentStep},
		wizard.SetPODocuments{Documents: draft.PODocuments},
	}
	for section, value := range draft.FormData {
		actions = append(actions, wizard.UpdateField{Field: section, Value: value})
	}
	s.store.Dispatch(actions...)
	return nil
}

// saveDraft writes the whole tree with step as the resume point when the
// session has a draft
func (s *Session) saveDraft(ctx context.Context, st *wizard.State, step int) error {
	if st.DraftID == 0 {
		return nil
	}
	return s.deps.Drafts.UpdateDraft(ctx, st.DraftID, st.FormData, step, st.PODocuments)
}

func (s *Session) begin() {
	s.store.Dispatch(wizard.SetError{Message: ""}, wizard.SetSuccess{Message: ""}, wizard.SetLoading{Loading: true})
}

func (s *Session) fail(err error) error {
	s.store.Dispatch(wizard.SetError{Message: err.Error()})
	if s.deps.Logger != nil {
		s.deps.Logger.Error("Wizard operation failed", "error", err, "mode", string(s.cfg.Mode))
	}
	return err
}
