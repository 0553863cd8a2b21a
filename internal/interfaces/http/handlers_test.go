package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/application/service"
	"github.com/garyjia/order-intake/internal/domain/entity"
	"github.com/garyjia/order-intake/internal/domain/order"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details []string        `json:"details"`
}

func newTestServer(services Services, opts ...ServerOption) *Server {
	return NewServer(DefaultServerConfig(), services, nopLogger{}, opts...)
}

func doRequest(t *testing.T, srv *Server, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy without check", func(t *testing.T) {
		w, _ := doRequest(t, newTestServer(Services{}), http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
	})

	t.Run("unhealthy when check fails", func(t *testing.T) {
		srv := newTestServer(Services{}, WithHealthCheck(func(ctx context.Context) error {
			return errors.New("database is locked")
		}))
		w, _ := doRequest(t, srv, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "database is locked")
	})
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(Services{})

	w, _ := doRequest(t, srv, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(Services{})

	req := httptest.NewRequest(http.MethodOptions, "/api/drafts", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCreateDraft(t *testing.T) {
	var got port.DraftRequest
	drafts := &mockDraftService{
		CreateFunc: func(ctx context.Context, req port.DraftRequest) (*entity.Draft, error) {
			got = req
			return &entity.Draft{ID: 42}, nil
		},
	}
	srv := newTestServer(Services{Drafts: drafts})

	w, env := doRequest(t, srv, http.MethodPost, "/api/drafts", map[string]interface{}{
		"formData":    map[string]interface{}{"clientPO": map[string]interface{}{"poNumber": "PO-1"}},
		"currentStep": 1,
		"poDocuments": []interface{}{},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"id":42}`, string(env.Data))
	assert.Equal(t, 1, got.CurrentStep)
	assert.Equal(t, "PO-1", got.FormData[order.SectionClientPO].(map[string]interface{})["poNumber"])
}

func TestCreateDraft_BadBody(t *testing.T) {
	srv := newTestServer(Services{Drafts: &mockDraftService{}})

	w, env := doRequest(t, srv, http.MethodPost, "/api/drafts", "{not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid request body", env.Error)
}

func TestCreateDraft_ValidationError(t *testing.T) {
	drafts := &mockDraftService{
		CreateFunc: func(ctx context.Context, req port.DraftRequest) (*entity.Draft, error) {
			return nil, &service.ValidationError{Messages: []string{"currentStep must be at least 1", "ownerId is required"}}
		},
	}
	srv := newTestServer(Services{Drafts: drafts})

	w, env := doRequest(t, srv, http.MethodPost, "/api/drafts", map[string]interface{}{"currentStep": 0})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "currentStep must be at least 1", env.Error)
	assert.Len(t, env.Details, 2)
}

func TestGetDraft(t *testing.T) {
	drafts := &mockDraftService{
		GetFunc: func(ctx context.Context, id int64) (*entity.Draft, error) {
			if id != 7 {
				return nil, service.ErrDraftNotFound
			}
			return &entity.Draft{
				ID:          7,
				FormData:    json.RawMessage(`{"clientPO":{"clientName":"Acme"}}`),
				CurrentStep: 3,
				PODocuments: json.RawMessage(`[]`),
			}, nil
		},
	}
	srv := newTestServer(Services{Drafts: drafts})

	w, env := doRequest(t, srv, http.MethodGet, "/api/drafts/7", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var draft port.DraftRequest
	require.NoError(t, json.Unmarshal(env.Data, &draft))
	assert.Equal(t, 3, draft.CurrentStep)
	assert.Equal(t, "Acme", draft.FormData[order.SectionClientPO].(map[string]interface{})["clientName"])

	w, env = doRequest(t, srv, http.MethodGet, "/api/drafts/8", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "draft not found", env.Error)
}

func TestDraftID_Invalid(t *testing.T) {
	srv := newTestServer(Services{Drafts: &mockDraftService{}})

	for _, path := range []string{"/api/drafts/abc", "/api/drafts/0", "/api/drafts/-3"} {
		w, env := doRequest(t, srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, "invalid id", env.Error, path)
	}
}

func TestUpdateAndDeleteDraft(t *testing.T) {
	var updated, deleted int64
	drafts := &mockDraftService{
		UpdateFunc: func(ctx context.Context, id int64, req port.DraftRequest) error {
			updated = id
			return nil
		},
		DeleteFunc: func(ctx context.Context, id int64) error {
			if id == 99 {
				return service.ErrDraftNotFound
			}
			deleted = id
			return nil
		},
	}
	srv := newTestServer(Services{Drafts: drafts})

	w, _ := doRequest(t, srv, http.MethodPut, "/api/drafts/5", map[string]interface{}{"currentStep": 2})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), updated)

	w, _ = doRequest(t, srv, http.MethodDelete, "/api/drafts/5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), deleted)

	w, _ = doRequest(t, srv, http.MethodDelete, "/api/drafts/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveStep_StoresBodyUnderKey(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantKey string
	}{
		{name: "step slug", path: "/api/steps/12/client-po", wantKey: "client-po"},
		{name: "sales order tab", path: "/api/steps/12/sales-order/payment-internal", wantKey: "sales-order/payment-internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotOrder int64
			var gotKey string
			var gotData json.RawMessage
			steps := &mockStepService{
				SaveFunc: func(ctx context.Context, orderID int64, stepKey string, data json.RawMessage) error {
					gotOrder, gotKey, gotData = orderID, stepKey, data
					return nil
				},
			}
			srv := newTestServer(Services{Steps: steps})

			w, _ := doRequest(t, srv, http.MethodPost, tt.path, `{"poNumber":"PO-1"}`)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, int64(12), gotOrder)
			assert.Equal(t, tt.wantKey, gotKey)
			assert.JSONEq(t, `{"poNumber":"PO-1"}`, string(gotData))
		})
	}
}

func TestStepErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "unknown step", err: fmt.Errorf("%w: bogus", service.ErrUnknownStep), wantStatus: http.StatusNotFound, wantError: "unknown step: bogus"},
		{name: "missing order", err: service.ErrOrderNotFound, wantStatus: http.StatusNotFound, wantError: "order not found"},
		{name: "invalid payload", err: &service.ValidationError{Messages: []string{"step payload must be valid JSON"}}, wantStatus: http.StatusBadRequest, wantError: "step payload must be valid JSON"},
		{name: "storage failure", err: errors.New("disk I/O error"), wantStatus: http.StatusInternalServerError, wantError: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := &mockStepService{
				SaveFunc: func(ctx context.Context, orderID int64, stepKey string, data json.RawMessage) error {
					return tt.err
				},
			}
			srv := newTestServer(Services{Steps: steps})

			w, env := doRequest(t, srv, http.MethodPost, "/api/steps/1/bogus", `{}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, env.Error)
			assert.False(t, env.Success)
		})
	}
}

func TestGetStep(t *testing.T) {
	steps := &mockStepService{
		GetFunc: func(ctx context.Context, orderID int64, stepKey string) (*entity.StepRecord, error) {
			if stepKey != "shipment" {
				return nil, service.ErrStepNotFound
			}
			return &entity.StepRecord{OrderID: orderID, StepKey: stepKey, Data: json.RawMessage(`{"marking":"Fragile"}`)}, nil
		},
	}
	srv := newTestServer(Services{Steps: steps})

	w, env := doRequest(t, srv, http.MethodGet, "/api/steps/3/shipment", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var record entity.StepRecord
	require.NoError(t, json.Unmarshal(env.Data, &record))
	assert.JSONEq(t, `{"marking":"Fragile"}`, string(record.Data))

	w, _ = doRequest(t, srv, http.MethodGet, "/api/steps/3/delivery", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSteps(t *testing.T) {
	steps := &mockStepService{
		ListFunc: func(ctx context.Context, orderID int64) ([]*entity.StepRecord, error) {
			return []*entity.StepRecord{{OrderID: orderID, StepKey: "client-po", Data: json.RawMessage(`{}`)}}, nil
		},
	}
	srv := newTestServer(Services{Steps: steps})

	w, env := doRequest(t, srv, http.MethodGet, "/api/orders/4/steps", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var records []entity.StepRecord
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "client-po", records[0].StepKey)
}

func TestCreateOrder_WrapsOrder(t *testing.T) {
	orders := &mockOrderService{
		CreateFunc: func(ctx context.Context, summary order.Summary) (*entity.SalesOrder, error) {
			return &entity.SalesOrder{ID: 100, ClientName: summary.ClientName, Status: "pending"}, nil
		},
	}
	srv := newTestServer(Services{Orders: orders})

	w, env := doRequest(t, srv, http.MethodPost, "/api/orders", order.Summary{
		ClientName: "Acme", OrderDate: "2026-02-20", DueDate: "2026-03-31",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var body struct {
		Order entity.SalesOrder `json:"order"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, int64(100), body.Order.ID)
	assert.Equal(t, "Acme", body.Order.ClientName)
}

func TestGetUpdateAssignOrder(t *testing.T) {
	var assigned port.AssignRequest
	orders := &mockOrderService{
		GetFunc: func(ctx context.Context, id int64) (*entity.SalesOrder, error) {
			if id == 404 {
				return nil, service.ErrOrderNotFound
			}
			return &entity.SalesOrder{ID: id}, nil
		},
		UpdateFunc: func(ctx context.Context, id int64, summary order.Summary) (*entity.SalesOrder, error) {
			return &entity.SalesOrder{ID: id, DueDate: summary.DueDate}, nil
		},
		AssignFunc: func(ctx context.Context, id int64, req port.AssignRequest) (*entity.SalesOrder, error) {
			assigned = req
			return &entity.SalesOrder{ID: id, AssignedTo: req.AssignedTo}, nil
		},
	}
	srv := newTestServer(Services{Orders: orders})

	w, _ := doRequest(t, srv, http.MethodGet, "/api/orders/7", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, srv, http.MethodGet, "/api/orders/404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := doRequest(t, srv, http.MethodPut, "/api/orders/7", order.Summary{ClientName: "Acme", DueDate: "2026-04-01"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"dueDate":"2026-04-01"`)

	w, env = doRequest(t, srv, http.MethodPost, "/api/orders/7/assign", map[string]interface{}{"assignedTo": "designer"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "designer", assigned.AssignedTo)
	assert.Contains(t, string(env.Data), `"assignedTo":"designer"`)
}

func TestNotifications(t *testing.T) {
	var gotLimit int
	notifications := &mockNotificationService{
		SendFunc: func(ctx context.Context, req port.NotificationRequest) (*entity.Notification, error) {
			return &entity.Notification{ID: 1, UserID: req.UserID, Message: req.Message, Type: req.Type}, nil
		},
		ListForUserFunc: func(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
			gotLimit = limit
			return []*entity.Notification{{ID: 1, UserID: userID}}, nil
		},
		MarkReadFunc: func(ctx context.Context, id int64) error {
			if id == 2 {
				return service.ErrNotificationNotFound
			}
			return nil
		},
	}
	srv := newTestServer(Services{Notifications: notifications})

	w, env := doRequest(t, srv, http.MethodPost, "/api/notifications", port.NotificationRequest{
		UserID: "designer", Message: "Order assigned", Type: entity.NotificationTypeOrder,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	w, _ = doRequest(t, srv, http.MethodGet, "/api/notifications?userId=designer", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultNotificationLimit, gotLimit)

	w, _ = doRequest(t, srv, http.MethodGet, "/api/notifications?userId=designer&limit=1000", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, maxNotificationLimit, gotLimit)

	w, env = doRequest(t, srv, http.MethodGet, "/api/notifications", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "userId is required", env.Error)

	w, _ = doRequest(t, srv, http.MethodGet, "/api/notifications?userId=designer&limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, srv, http.MethodPost, "/api/notifications/1/read", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, srv, http.MethodPost, "/api/notifications/2/read", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddVendorQuote(t *testing.T) {
	vendors := &mockVendorService{
		AddQuoteFunc: func(ctx context.Context, materialRequestID int64, req port.VendorQuoteRequest) (*entity.VendorQuote, error) {
			if req.VendorID == 2 {
				return nil, fmt.Errorf("add vendor quote: %w", port.ErrConflict)
			}
			return &entity.VendorQuote{ID: 11, MaterialRequestID: materialRequestID, VendorID: req.VendorID}, nil
		},
	}
	srv := newTestServer(Services{Vendors: vendors})

	w, env := doRequest(t, srv, http.MethodPost, "/api/material-requests/3/vendors", port.VendorQuoteRequest{VendorID: 1, QuotedPrice: 99.5})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"vendorQuoteId":11}`, string(env.Data))

	w, _ = doRequest(t, srv, http.MethodPost, "/api/material-requests/3/vendors", port.VendorQuoteRequest{VendorID: 2})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSelectVendor(t *testing.T) {
	quotes := []*entity.VendorQuote{
		{ID: 1, MaterialRequestID: 3, VendorID: 1, Selected: false},
		{ID: 2, MaterialRequestID: 3, VendorID: 2, Selected: true},
	}
	var selectCalls int
	vendors := &mockVendorService{
		SelectVendorFunc: func(ctx context.Context, materialRequestID, vendorID int64) (bool, error) {
			selectCalls++
			return vendorID == 2, nil
		},
		ListQuotesFunc: func(ctx context.Context, materialRequestID int64) ([]*entity.VendorQuote, error) {
			return quotes, nil
		},
	}
	srv := newTestServer(Services{Vendors: vendors})

	w, env := doRequest(t, srv, http.MethodPost, "/api/material-requests/3/select-vendor", map[string]interface{}{"vendorId": 2})
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Selected bool                  `json:"selected"`
		Vendors  []*entity.VendorQuote `json:"vendors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.True(t, body.Selected)
	assert.Len(t, body.Vendors, 2)

	w, env = doRequest(t, srv, http.MethodPost, "/api/material-requests/3/select-vendor", map[string]interface{}{"vendorId": 9})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.False(t, body.Selected)

	w, env = doRequest(t, srv, http.MethodPost, "/api/material-requests/3/select-vendor", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "vendorId is required", env.Error)
	assert.Equal(t, 2, selectCalls)
}

func TestMetricsMiddleware(t *testing.T) {
	metrics := &mockMetrics{}
	orders := &mockOrderService{
		GetFunc: func(ctx context.Context, id int64) (*entity.SalesOrder, error) {
			return &entity.SalesOrder{ID: id}, nil
		},
	}
	srv := newTestServer(Services{Orders: orders}, WithMetrics(metrics))

	doRequest(t, srv, http.MethodGet, "/api/orders/1", nil)
	doRequest(t, srv, http.MethodGet, "/api/orders/2", nil)
	doRequest(t, srv, http.MethodGet, "/nowhere", nil)

	w, _ := doRequest(t, srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# metrics")

	assert.Equal(t, []recordedRequest{
		{method: http.MethodGet, path: "/api/orders/:id", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/orders/:id", status: http.StatusOK},
		{method: http.MethodGet, path: "unmatched", status: http.StatusNotFound},
	}, metrics.recorded())
	assert.Equal(t, 0, metrics.inFlight)
	assert.Equal(t, 1, metrics.peak)
}

func TestMetricsEndpointAbsentWithoutMetrics(t *testing.T) {
	w, _ := doRequest(t, newTestServer(Services{}), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
