package orderapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/order"
)

type idResponse struct {
	ID int64 `json:"id"`
}

type orderResponse struct {
	Order idResponse `json:"order"`
}

type stepResponse struct {
	Data json.RawMessage `json:"data"`
}

// CreateDraft handles POST /api/drafts
func (c *Client) CreateDraft(ctx context.Context, req port.DraftRequest) (int64, error) {
	var out idResponse
	if err := c.do(ctx, http.MethodPost, "/api/drafts", req, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// UpdateDraft handles PUT /api/drafts/:id
func (c *Client) UpdateDraft(ctx context.Context, id int64, req port.DraftRequest) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/drafts/%d", id), req, nil)
}

// DeleteDraft handles DELETE /api/drafts/:id
func (c *Client) DeleteDraft(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/drafts/%d", id), nil, nil)
}

// GetDraft handles GET /api/drafts/:id
func (c *Client) GetDraft(ctx context.Context, id int64) (*port.DraftRequest, error) {
	var out port.DraftRequest
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/drafts/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveStep handles POST /api/steps/:orderId/:stepKey
func (c *Client) SaveStep(ctx context.Context, orderID int64, stepKey string, payload any) error {
	return c.do(ctx, http.MethodPost, stepPath(orderID, stepKey), payload, nil)
}

// GetStep handles GET /api/steps/:orderId/:stepKey
func (c *Client) GetStep(ctx context.Context, orderID int64, stepKey string) (json.RawMessage, bool, error) {
	var out stepResponse
	err := c.do(ctx, http.MethodGet, stepPath(orderID, stepKey), nil, &out)
	if errors.Is(err, port.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out.Data, true, nil
}

// CreateOrder handles POST /api/orders
func (c *Client) CreateOrder(ctx context.Context, summary order.Summary) (int64, error) {
	var out orderResponse
	if err := c.do(ctx, http.MethodPost, "/api/orders", summary, &out); err != nil {
		return 0, err
	}
	return out.Order.ID, nil
}

// UpdateOrder handles PUT /api/orders/:id
func (c *Client) UpdateOrder(ctx context.Context, id int64, summary order.Summary) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/orders/%d", id), summary, nil)
}

// AssignOrder handles POST /api/orders/:id/assign
func (c *Client) AssignOrder(ctx context.Context, id int64, req port.AssignRequest) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/orders/%d/assign", id), req, nil)
}

// SendNotification handles POST /api/notifications
func (c *Client) SendNotification(ctx context.Context, req port.NotificationRequest) error {
	return c.do(ctx, http.MethodPost, "/api/notifications", req, nil)
}

func stepPath(orderID int64, stepKey string) string {
	return fmt.Sprintf("/api/steps/%d/%s", orderID, stepKey)
}

// Verify interface compliance
var (
	_ port.DraftAPI        = (*Client)(nil)
	_ port.StepAPI         = (*Client)(nil)
	_ port.OrderAPI        = (*Client)(nil)
	_ port.NotificationAPI = (*Client)(nil)
)
