package workflow

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/order"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockDraftAPI struct {
	mu         sync.Mutex
	createFunc func(ctx context.Context, req port.DraftRequest) (int64, error)
	updateFunc func(ctx context.Context, id int64, req port.DraftRequest) error
	deleteFunc func(ctx context.Context, id int64) error
	getFunc    func(ctx context.Context, id int64) (*port.DraftRequest, error)

	created []port.DraftRequest
	updated []port.DraftRequest
	deleted []int64
}

func (m *mockDraftAPI) CreateDraft(ctx context.Context, req port.DraftRequest) (int64, error) {
	m.mu.Lock()
	m.created = append(m.created, req)
	m.mu.Unlock()
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return 42, nil
}

func (m *mockDraftAPI) UpdateDraft(ctx context.Context, id int64, req port.DraftRequest) error {
	m.mu.Lock()
	m.updated = append(m.updated, req)
	m.mu.Unlock()
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, req)
	}
	return nil
}

func (m *mockDraftAPI) DeleteDraft(ctx context.Context, id int64) error {
	m.mu.Lock()
	m.deleted = append(m.deleted, id)
	m.mu.Unlock()
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockDraftAPI) GetDraft(ctx context.Context, id int64) (*port.DraftRequest, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, port.ErrNotFound
}

type mockStepAPI struct {
	mu       sync.Mutex
	saveFunc func(ctx context.Context, orderID int64, stepKey string, payload any) error
	getFunc  func(ctx context.Context, orderID int64, stepKey string) (json.RawMessage, bool, error)

	saved map[string]json.RawMessage
	keys  []string
}

func (m *mockStepAPI) SaveStep(ctx context.Context, orderID int64, stepKey string, payload any) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, orderID, stepKey, payload); err != nil {
			return err
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string]json.RawMessage)
	}
	m.saved[stepKey] = data
	m.keys = append(m.keys, stepKey)
	return nil
}

func (m *mockStepAPI) GetStep(ctx context.Context, orderID int64, stepKey string) (json.RawMessage, bool, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, orderID, stepKey)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.saved[stepKey]
	return data, ok, nil
}

func (m *mockStepAPI) savedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

type mockOrderAPI struct {
	createFunc func(ctx context.Context, summary order.Summary) (int64, error)
	updateFunc func(ctx context.Context, id int64, summary order.Summary) error
	assignFunc func(ctx context.Context, id int64, req port.AssignRequest) error

	createdSummaries []order.Summary
}

func (m *mockOrderAPI) CreateOrder(ctx context.Context, summary order.Summary) (int64, error) {
	m.createdSummaries = append(m.createdSummaries, summary)
	if m.createFunc != nil {
		return m.createFunc(ctx, summary)
	}
	return 100, nil
}

func (m *mockOrderAPI) UpdateOrder(ctx context.Context, id int64, summary order.Summary) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, summary)
	}
	return nil
}

func (m *mockOrderAPI) AssignOrder(ctx context.Context, id int64, req port.AssignRequest) error {
	if m.assignFunc != nil {
		return m.assignFunc(ctx, id, req)
	}
	return nil
}

type mockNotificationAPI struct {
	mu       sync.Mutex
	sendFunc func(ctx context.Context, req port.NotificationRequest) error
	sent     []port.NotificationRequest
}

func (m *mockNotificationAPI) SendNotification(ctx context.Context, req port.NotificationRequest) error {
	if m.sendFunc != nil {
		if err := m.sendFunc(ctx, req); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, req)
	return nil
}

type mockRecorder struct {
	mu       sync.Mutex
	outcomes []string
	commits  map[string]error
}

func (m *mockRecorder) RecordFinalization(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *mockRecorder) RecordStepCommit(step string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commits == nil {
		m.commits = make(map[string]error)
	}
	m.commits[step] = err
}

// harness wires every component against the mocks
type harness struct {
	drafts        *mockDraftAPI
	steps         *mockStepAPI
	orders        *mockOrderAPI
	notifications *mockNotificationAPI
	recorder      *mockRecorder
	deps          SessionDeps
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newHarness() *harness {
	h := &harness{
		drafts:        &mockDraftAPI{},
		steps:         &mockStepAPI{},
		orders:        &mockOrderAPI{},
		notifications: &mockNotificationAPI{},
		recorder:      &mockRecorder{},
	}
	logger := &mockLogger{}
	drafts := NewDraftSynchronizer(h.drafts, "sales-1", logger)
	steps := NewStepCommitter(h.steps, logger)
	h.deps = SessionDeps{
		Drafts: drafts,
		Steps:  steps,
		Finalizer: NewOrderFinalizer(h.orders, h.notifications, steps, drafts, logger,
			WithRecorder(h.recorder), WithClock(func() time.Time { return fixedNow })),
		Orders: h.orders,
		Logger: logger,
	}
	return h
}
