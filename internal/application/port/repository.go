package port

import (
	"context"
	"errors"
	"time"

	"github.com/garyjia/order-intake/internal/domain/entity"
)

// ErrNotFound is returned by updates and deletes that matched no row.
// Lookups return (nil, nil) instead.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned by inserts that violate a uniqueness constraint
var ErrConflict = errors.New("record already exists")

// DraftRepository defines persistence operations for Draft
type DraftRepository interface {
	Create(ctx context.Context, draft *entity.Draft) error
	GetByID(ctx context.Context, id int64) (*entity.Draft, error)
	Update(ctx context.Context, draft *entity.Draft) error
	Delete(ctx context.Context, id int64) error
	DeleteUpdatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SalesOrderRepository defines persistence operations for SalesOrder
type SalesOrderRepository interface {
	Create(ctx context.Context, order *entity.SalesOrder) error
	GetByID(ctx context.Context, id int64) (*entity.SalesOrder, error)
	Update(ctx context.Context, order *entity.SalesOrder) error
	Assign(ctx context.Context, id int64, assignee string, at time.Time) error
}

// StepRepository defines persistence operations for StepRecord
type StepRepository interface {
	Upsert(ctx context.Context, record *entity.StepRecord) error
	Get(ctx context.Context, orderID int64, stepKey string) (*entity.StepRecord, error)
	ListByOrder(ctx context.Context, orderID int64) ([]*entity.StepRecord, error)
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

// VendorQuoteRepository defines persistence operations for VendorQuote
type VendorQuoteRepository interface {
	Create(ctx context.Context, quote *entity.VendorQuote) error
	ListByMaterialRequest(ctx context.Context, materialRequestID int64) ([]*entity.VendorQuote, error)
	// ClearSelection unsets selected on every quote of the material request
	ClearSelection(ctx context.Context, materialRequestID int64) error
	// MarkSelected sets selected on one quote and reports how many rows matched
	MarkSelected(ctx context.Context, materialRequestID, vendorID int64) (int64, error)
}

// TransactionManager runs fn inside one database transaction. Repositories
// called with the ctx passed to fn join that transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
