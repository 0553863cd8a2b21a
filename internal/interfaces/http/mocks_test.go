package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/entity"
	"github.com/garyjia/order-intake/internal/domain/order"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type mockDraftService struct {
	CreateFunc     func(ctx context.Context, req port.DraftRequest) (*entity.Draft, error)
	GetFunc        func(ctx context.Context, id int64) (*entity.Draft, error)
	UpdateFunc     func(ctx context.Context, id int64, req port.DraftRequest) error
	DeleteFunc     func(ctx context.Context, id int64) error
	PurgeStaleFunc func(ctx context.Context, retention time.Duration) (int64, error)
}

func (m *mockDraftService) Create(ctx context.Context, req port.DraftRequest) (*entity.Draft, error) {
	return m.CreateFunc(ctx, req)
}

func (m *mockDraftService) Get(ctx context.Context, id int64) (*entity.Draft, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockDraftService) Update(ctx context.Context, id int64, req port.DraftRequest) error {
	return m.UpdateFunc(ctx, id, req)
}

func (m *mockDraftService) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockDraftService) PurgeStale(ctx context.Context, retention time.Duration) (int64, error) {
	return m.PurgeStaleFunc(ctx, retention)
}

type mockStepService struct {
	SaveFunc func(ctx context.Context, orderID int64, stepKey string, data json.RawMessage) error
	GetFunc  func(ctx context.Context, orderID int64, stepKey string) (*entity.StepRecord, error)
	ListFunc func(ctx context.Context, orderID int64) ([]*entity.StepRecord, error)
}

func (m *mockStepService) Save(ctx context.Context, orderID int64, stepKey string, data json.RawMessage) error {
	return m.SaveFunc(ctx, orderID, stepKey, data)
}

func (m *mockStepService) Get(ctx context.Context, orderID int64, stepKey string) (*entity.StepRecord, error) {
	return m.GetFunc(ctx, orderID, stepKey)
}

func (m *mockStepService) List(ctx context.Context, orderID int64) ([]*entity.StepRecord, error) {
	return m.ListFunc(ctx, orderID)
}

type mockOrderService struct {
	CreateFunc func(ctx context.Context, summary order.Summary) (*entity.SalesOrder, error)
	GetFunc    func(ctx context.Context, id int64) (*entity.SalesOrder, error)
	UpdateFunc func(ctx context.Context, id int64, summary order.Summary) (*entity.SalesOrder, error)
	AssignFunc func(ctx context.Context, id int64, req port.AssignRequest) (*entity.SalesOrder, error)
}

func (m *mockOrderService) Create(ctx context.Context, summary order.Summary) (*entity.SalesOrder, error) {
	return m.CreateFunc(ctx, summary)
}

func (m *mockOrderService) Get(ctx context.Context, id int64) (*entity.SalesOrder, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockOrderService) Update(ctx context.Context, id int64, summary order.Summary) (*entity.SalesOrder, error) {
	return m.UpdateFunc(ctx, id, summary)
}

func (m *mockOrderService) Assign(ctx context.Context, id int64, req port.AssignRequest) (*entity.SalesOrder, error) {
	return m.AssignFunc(ctx, id, req)
}

type mockNotificationService struct {
	SendFunc        func(ctx context.Context, req port.NotificationRequest) (*entity.Notification, error)
	ListForUserFunc func(ctx context.Context, userID string, limit int) ([]*entity.Notification, error)
	MarkReadFunc    func(ctx context.Context, id int64) error
}

func (m *mockNotificationService) Send(ctx context.Context, req port.NotificationRequest) (*entity.Notification, error) {
	return m.SendFunc(ctx, req)
}

func (m *mockNotificationService) ListForUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	return m.ListForUserFunc(ctx, userID, limit)
}

func (m *mockNotificationService) MarkRead(ctx context.Context, id int64) error {
	return m.MarkReadFunc(ctx, id)
}

type mockVendorService struct {
	AddQuoteFunc     func(ctx context.Context, materialRequestID int64, req port.VendorQuoteRequest) (*entity.VendorQuote, error)
	ListQuotesFunc   func(ctx context.Context, materialRequestID int64) ([]*entity.VendorQuote, error)
	SelectVendorFunc func(ctx context.Context, materialRequestID, vendorID int64) (bool, error)
}

func (m *mockVendorService) AddQuote(ctx context.Context, materialRequestID int64, req port.VendorQuoteRequest) (*entity.VendorQuote, error) {
	return m.AddQuoteFunc(ctx, materialRequestID, req)
}

func (m *mockVendorService) ListQuotes(ctx context.Context, materialRequestID int64) ([]*entity.VendorQuote, error) {
	return m.ListQuotesFunc(ctx, materialRequestID)
}

func (m *mockVendorService) SelectVendor(ctx context.Context, materialRequestID, vendorID int64) (bool, error) {
	return m.SelectVendorFunc(ctx, materialRequestID, vendorID)
}

type recordedRequest struct {
	method string
	path   string
	status int
}

type mockMetrics struct {
	mu       sync.Mutex
	requests []recordedRequest
	inFlight int
	peak     int
}

func (m *mockMetrics) TrackInFlight() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight++
	m.peak = max(m.peak, m.inFlight)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.inFlight--
	}
}

func (m *mockMetrics) RecordHTTPRequest(method, path string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{method: method, path: path, status: status})
}

func (m *mockMetrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("# metrics\n"))
	})
}

func (m *mockMetrics) recorded() []recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedRequest(nil), m.requests...)
}
