package port

import (
	"context"
	"encoding/json"
	"time"

	"github.com/garyjia/order-intake/internal/domain/order"
)

// DraftRequest is the body of draft create and update calls. Every call
// carries the complete form tree.
type DraftRequest struct {
	FormData    order.FormTree   `json:"formData"`
	CurrentStep int              `json:"currentStep" validate:"gte=1,lte=8"`
	PODocuments []order.Document `json:"poDocuments"`
	OwnerID     string           `json:"ownerId,omitempty"`
}

// NotificationRequest is one in-app notification to deliver
type NotificationRequest struct {
	UserID      string `json:"userId"`
	Message     string `json:"message" validate:"required"`
	Type        string `json:"type"`
	RelatedID   *int64 `json:"relatedId,omitempty"`
	RelatedType string `json:"relatedType,omitempty"`
}

// AssignRequest hands an order to one assignee
type AssignRequest struct {
	AssignedTo string    `json:"assignedTo" validate:"required"`
	AssignedAt time.Time `json:"assignedAt"`
}

// VendorQuoteRequest registers a vendor's quote for a material request
type VendorQuoteRequest struct {
	VendorID     int64   `json:"vendorId" validate:"required,gt=0"`
	QuotedPrice  float64 `json:"quotedPrice" validate:"gte=0"`
	DeliveryDays int     `json:"deliveryDays" validate:"gte=0"`
	Notes        string  `json:"notes"`
}

// SelectVendorRequest picks the winning quote of a material request
type SelectVendorRequest struct {
	VendorID int64 `json:"vendorId" validate:"required,gt=0"`
}

// DraftAPI persists in-progress wizard sessions
type DraftAPI interface {
	CreateDraft(ctx context.Context, req DraftRequest) (int64, error)
	UpdateDraft(ctx context.Context, id int64, req DraftRequest) error
	DeleteDraft(ctx context.Context, id int64) error
	// GetDraft returns ErrNotFound for unknown ids
	GetDraft(ctx context.Context, id int64) (*DraftRequest, error)
}

// StepAPI persists per-step payloads of an order. stepKey is a step slug or
// "sales-order/<tab>" for the step-2 tabs.
type StepAPI interface {
	SaveStep(ctx context.Context, orderID int64, stepKey string, payload any) error
	// GetStep returns found=false when the step was never saved
	GetStep(ctx context.Context, orderID int64, stepKey string) (data json.RawMessage, found bool, err error)
}

// OrderAPI creates and maintains order records
type OrderAPI interface {
	CreateOrder(ctx context.Context, summary order.Summary) (int64, error)
	UpdateOrder(ctx context.Context, id int64, summary order.Summary) error
	AssignOrder(ctx context.Context, id int64, req AssignRequest) error
}

// NotificationAPI delivers in-app notifications
type NotificationAPI interface {
	SendNotification(ctx context.Context, req NotificationRequest) error
}

// MessageSender pushes a text message to a chat user
type MessageSender interface {
	SendText(ctx context.Context, receiveID, text string) error
}
