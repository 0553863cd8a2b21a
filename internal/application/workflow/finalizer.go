package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/entity"
	"github.com/garyjia/order-intake/internal/domain/order"
	domainwf "github.com/garyjia/order-intake/internal/domain/workflow"
	"github.com/sourcegraph/conc/pool"
)

// Finalization outcomes passed to Recorder
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

// Recorder observes finalization runs
type Recorder interface {
	RecordFinalization(outcome string, duration time.Duration)
	RecordStepCommit(step string, err error)
}

// FinalizeInput is everything the finalizer needs from a session
type FinalizeInput struct {
	Form      order.FormTree
	DraftID   int64
	CreatedBy string
	Assignees map[int]string
	Notes     map[int]string
}

// StepOutcome is the result of committing one step during finalization
type StepOutcome struct {
	Step int
	Slug string
	Err  error
}

// FinalizeResult describes a finalization run. Failures lists every
// non-fatal problem; an empty list means everything succeeded.
type FinalizeResult struct {
	OrderID           int64
	State             domainwf.State
	Steps             []StepOutcome
	NotificationsSent int
	DraftDeleted      bool
	Failures          []string
	// Phases is the lifecycle as it ran
	Phases []domainwf.Transition
}

// Partial reports whether the order exists but something after creation failed
func (r *FinalizeResult) Partial() bool {
	return r.State == domainwf.StateDone && len(r.Failures) > 0
}

// FailedSteps returns the slugs of steps that could not be committed
func (r *FinalizeResult) FailedSteps() []string {
	var failed []string
	for _, s := range r.Steps {
		if s.Err != nil {
			failed = append(failed, s.Slug)
		}
	}
	return failed
}

// Summary is a one-line description suitable for the session's success message
func (r *FinalizeResult) Summary() string {
	if len(r.Failures) == 0 {
		return fmt.Sprintf("Sales order #%d created successfully", r.OrderID)
	}
	return fmt.Sprintf("Sales order #%d created with %d problem(s): %s",
		r.OrderID, len(r.Failures), strings.Join(r.Failures, "; "))
}

// OrderFinalizer turns a completed session into an order record, its step
// records, notifications and a removed draft
type OrderFinalizer struct {
	orders        port.OrderAPI
	notifications port.NotificationAPI
	steps         *StepCommitter
	drafts        *DraftSynchronizer
	logger        Logger
	recorder      Recorder
	now           func() time.Time
}

// FinalizerOption configures the finalizer
type FinalizerOption func(*OrderFinalizer)

// WithRecorder records outcomes, e.g. into metrics
func WithRecorder(r Recorder) FinalizerOption {
	return func(f *OrderFinalizer) {
		f.recorder = r
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) FinalizerOption {
	return func(f *OrderFinalizer) {
		f.now = now
	}
}

// NewOrderFinalizer creates a new OrderFinalizer
func NewOrderFinalizer(
	orders port.OrderAPI,
	notifications port.NotificationAPI,
	steps *StepCommitter,
	drafts *DraftSynchronizer,
	logger Logger,
	opts ...FinalizerOption,
) *OrderFinalizer {
	f := &OrderFinalizer{
		orders:        orders,
		notifications: notifications,
		steps:         steps,
		drafts:        drafts,
		logger:        logger,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Finalize runs the whole lifecycle. It returns an error only when the order
// record could not be created; then nothing else has run and the draft is
// intact. Any later problem is reported in FinalizeResult.Failures.
func (f *OrderFinalizer) Finalize(ctx context.Context, in FinalizeInput) (*FinalizeResult, error) {
	start := f.now()
	machine := domainwf.NewFinalizationMachine(domainwf.WithClock(f.now))
	result := &FinalizeResult{}

	if err := machine.Fire(ctx, domainwf.TriggerSubmit); err != nil {
		return nil, err
	}

	orderID, fd, err := f.createOrder(ctx, in)
	if err != nil {
		_ = machine.Fire(ctx, domainwf.TriggerCreateFailed)
		result.State = machine.State()
		result.Phases = machine.History()
		f.record(OutcomeFailed, start)
		return result, fmt.Errorf("%w: %w", ErrOrderCreationFailed, err)
	}
	result.OrderID = orderID
	if err := machine.Fire(ctx, domainwf.TriggerOrderCreated); err != nil {
		return nil, err
	}

	result.Steps = f.persistSteps(ctx, orderID, fd)
	for _, s := range result.Steps {
		if s.Err != nil {
			result.Failures = append(result.Failures, fmt.Sprintf("step %s: %v", s.Slug, s.Err))
		}
	}
	if err := machine.Fire(ctx, domainwf.TriggerStepsSettled); err != nil {
		return nil, err
	}

	sent, failures := f.notify(ctx, orderID, fd, in)
	result.NotificationsSent = sent
	result.Failures = append(result.Failures, failures...)
	if err := machine.Fire(ctx, domainwf.TriggerNotificationsSent); err != nil {
		return nil, err
	}

	if in.DraftID != 0 {
		if err := f.drafts.DeleteDraft(ctx, in.DraftID); err != nil {
			result.Failures = append(result.Failures, fmt.Sprintf("draft cleanup: %v", err))
		} else {
			result.DraftDeleted = true
		}
	}
	if err := machine.Fire(ctx, domainwf.TriggerCleanupFinished); err != nil {
		return nil, err
	}

	result.State = machine.State()
	result.Phases = machine.History()
	outcome := OutcomeSuccess
	if len(result.Failures) > 0 {
		outcome = OutcomePartial
	}
	f.record(outcome, start)

	f.logger.Info("Order finalized",
		"order_id", orderID,
		"failures", len(result.Failures),
		"notifications_sent", sent,
	)
	return result, nil
}

func (f *OrderFinalizer) createOrder(ctx context.Context, in FinalizeInput) (int64, order.FormData, error) {
	fd, err := order.DecodeForm(in.Form)
	if err != nil {
		return 0, order.FormData{}, err
	}

	summary := order.BuildSummary(fd, in.CreatedBy, f.now())
	id, err := f.orders.CreateOrder(ctx, summary)
	if err != nil {
		f.logger.Error("Failed to create order", "error", err, "po_number", summary.PONumber)
		return 0, order.FormData{}, err
	}

	f.logger.Info("Order created", "order_id", id, "po_number", summary.PONumber)
	return id, fd, nil
}

// persistSteps commits all steps concurrently and waits for every one of them
func (f *OrderFinalizer) persistSteps(ctx context.Context, orderID int64, fd order.FormData) []StepOutcome {
	p := pool.NewWithResults[StepOutcome]()

	for _, info := range order.Steps() {
		info := info
		p.Go(func() StepOutcome {
			_, err := f.steps.commitDecoded(ctx, info.Number, orderID, fd)
			if f.recorder != nil {
				f.recorder.RecordStepCommit(info.Slug, err)
			}
			return StepOutcome{Step: info.Number, Slug: info.Slug, Err: err}
		})
	}

	outcomes := p.Wait()
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Step < outcomes[j].Step })
	return outcomes
}

// notify sends one assignment notification per assigned step and one
// order-created notification to the creator. Failures are collected, not returned.
func (f *OrderFinalizer) notify(ctx context.Context, orderID int64, fd order.FormData, in FinalizeInput) (int, []string) {
	var requests []port.NotificationRequest
	for _, a := range departmentAssignments(in.Assignees, in.Notes) {
		msg := fmt.Sprintf("You have been assigned to %s (%s) for sales order #%d",
			strings.Join(a.titles, ", "), a.department, orderID)
		if len(a.notes) > 0 {
			msg += ". Note: " + strings.Join(a.notes, "; ")
		}
		requests = append(requests, f.notification(orderID, a.assignee, msg, entity.NotificationTypeAssignment))
	}

	msg := fmt.Sprintf("Sales order #%d for %s has been created", orderID, fd.ClientPO.ClientName)
	requests = append(requests, f.notification(orderID, orderOwner(in.CreatedBy, fd), msg, entity.NotificationTypeOrder))

	sent := 0
	var failures []string
	for _, req := range requests {
		if err := f.notifications.SendNotification(ctx, req); err != nil {
			f.logger.Error("Failed to send notification", "error", err, "order_id", orderID, "user_id", req.UserID)
			failures = append(failures, fmt.Sprintf("notification to %s: %v", req.UserID, err))
			continue
		}
		sent++
	}
	return sent, failures
}

// fallbackOwner receives the order-created notification when neither the
// session user nor the form names a project owner
const fallbackOwner = "admin"

func orderOwner(createdBy string, fd order.FormData) string {
	switch {
	case createdBy != "":
		return createdBy
	case fd.QualityCheck.InternalProjectOwner != "":
		return fd.QualityCheck.InternalProjectOwner
	default:
		return fallbackOwner
	}
}

type assignment struct {
	department string
	assignee   string
	titles     []string
	notes      []string
}

// departmentAssignments folds step assignees into one entry per department
// and assignee, in step order. Steps sharing a department and assignee (the
// two sales steps) produce a single message.
func departmentAssignments(assignees map[int]string, notes map[int]string) []*assignment {
	var out []*assignment
	index := make(map[[2]string]*assignment)
	for _, info := range order.Steps() {
		assignee := assignees[info.Number]
		if assignee == "" {
			continue
		}
		key := [2]string{info.Department, assignee}
		a, ok := index[key]
		if !ok {
			a = &assignment{department: info.Department, assignee: assignee}
			index[key] = a
			out = append(out, a)
		}
		a.titles = append(a.titles, info.Title)
		if note := notes[info.Number]; note != "" {
			a.notes = append(a.notes, note)
		}
	}
	return out
}

func (f *OrderFinalizer) notification(orderID int64, userID, message, notificationType string) port.NotificationRequest {
	id := orderID
	return port.NotificationRequest{
		UserID:      userID,
		Message:     message,
		Type:        notificationType,
		RelatedID:   &id,
		RelatedType: entity.RelatedTypeSalesOrder,
	}
}

func (f *OrderFinalizer) record(outcome string, start time.Time) {
	if f.recorder != nil {
		f.recorder.RecordFinalization(outcome, f.now().Sub(start))
	}
}
