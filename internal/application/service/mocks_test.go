package service

import (
	"context"
	"sync"
	"time"

	"github.com/garyjia/order-intake/internal/application/dispatcher"
	"github.com/garyjia/order-intake/internal/domain/entity"
	"github.com/garyjia/order-intake/internal/domain/event"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockDraftRepo struct {
	createFunc              func(ctx context.Context, draft *entity.Draft) error
	getByIDFunc             func(ctx context.Context, id int64) (*entity.Draft, error)
	updateFunc              func(ctx context.Context, draft *entity.Draft) error
	deleteFunc              func(ctx context.Context, id int64) error
	deleteUpdatedBeforeFunc func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockDraftRepo) Create(ctx context.Context, draft *entity.Draft) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, draft)
	}
	draft.ID = 1
	return nil
}

func (m *mockDraftRepo) GetByID(ctx context.Context, id int64) (*entity.Draft, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockDraftRepo) Update(ctx context.Context, draft *entity.Draft) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, draft)
	}
	return nil
}

func (m *mockDraftRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockDraftRepo) DeleteUpdatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteUpdatedBeforeFunc != nil {
		return m.deleteUpdatedBeforeFunc(ctx, cutoff)
	}
	return 0, nil
}

type mockOrderRepo struct {
	createFunc  func(ctx context.Context, order *entity.SalesOrder) error
	getByIDFunc func(ctx context.Context, id int64) (*entity.SalesOrder, error)
	updateFunc  func(ctx context.Context, order *entity.SalesOrder) error
	assignFunc  func(ctx context.Context, id int64, assignee string, at time.Time) error
}

func (m *mockOrderRepo) Create(ctx context.Context, order *entity.SalesOrder) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, order)
	}
	order.ID = 1
	return nil
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id int64) (*entity.SalesOrder, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.SalesOrder{ID: id}, nil
}

func (m *mockOrderRepo) Update(ctx context.Context, order *entity.SalesOrder) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, order)
	}
	return nil
}

func (m *mockOrderRepo) Assign(ctx context.Context, id int64, assignee string, at time.Time) error {
	if m.assignFunc != nil {
		return m.assignFunc(ctx, id, assignee, at)
	}
	return nil
}

type mockStepRepo struct {
	upsertFunc      func(ctx context.Context, record *entity.StepRecord) error
	getFunc         func(ctx context.Context, orderID int64, stepKey string) (*entity.StepRecord, error)
	listByOrderFunc func(ctx context.Context, orderID int64) ([]*entity.StepRecord, error)
}

func (m *mockStepRepo) Upsert(ctx context.Context, record *entity.StepRecord) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, record)
	}
	return nil
}

func (m *mockStepRepo) Get(ctx context.Context, orderID int64, stepKey string) (*entity.StepRecord, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, orderID, stepKey)
	}
	return nil, nil
}

func (m *mockStepRepo) ListByOrder(ctx context.Context, orderID int64) ([]*entity.StepRecord, error) {
	if m.listByOrderFunc != nil {
		return m.listByOrderFunc(ctx, orderID)
	}
	return nil, nil
}

type mockNotificationRepo struct {
	createFunc     func(ctx context.Context, n *entity.Notification) error
	listByUserFunc func(ctx context.Context, userID string, limit int) ([]*entity.Notification, error)
	markReadFunc   func(ctx context.Context, id int64) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, n)
	}
	n.ID = 1
	return nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id int64) error {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, id)
	}
	return nil
}

type mockQuoteRepo struct {
	createFunc         func(ctx context.Context, quote *entity.VendorQuote) error
	listFunc           func(ctx context.Context, materialRequestID int64) ([]*entity.VendorQuote, error)
	clearSelectionFunc func(ctx context.Context, materialRequestID int64) error
	markSelectedFunc   func(ctx context.Context, materialRequestID, vendorID int64) (int64, error)
}

func (m *mockQuoteRepo) Create(ctx context.Context, quote *entity.VendorQuote) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, quote)
	}
	quote.ID = 1
	return nil
}

func (m *mockQuoteRepo) ListByMaterialRequest(ctx context.Context, materialRequestID int64) ([]*entity.VendorQuote, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, materialRequestID)
	}
	return nil, nil
}

func (m *mockQuoteRepo) ClearSelection(ctx context.Context, materialRequestID int64) error {
	if m.clearSelectionFunc != nil {
		return m.clearSelectionFunc(ctx, materialRequestID)
	}
	return nil
}

func (m *mockQuoteRepo) MarkSelected(ctx context.Context, materialRequestID, vendorID int64) (int64, error) {
	if m.markSelectedFunc != nil {
		return m.markSelectedFunc(ctx, materialRequestID, vendorID)
	}
	return 1, nil
}

// recordingDispatcher captures published events instead of running handlers
type recordingDispatcher struct {
	mu     sync.Mutex
	events []*event.Event
}

func (d *recordingDispatcher) Subscribe(event.Type, dispatcher.Handler)              {}
func (d *recordingDispatcher) SubscribeNamed(event.Type, string, dispatcher.Handler) {}
func (d *recordingDispatcher) ListHandlers(event.Type) []dispatcher.HandlerInfo      { return nil }
func (d *recordingDispatcher) Close() error                                          { return nil }

func (d *recordingDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	d.DispatchAsync(ctx, evt)
	return nil
}

func (d *recordingDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, evt)
}
