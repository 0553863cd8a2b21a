package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/entity"
	"github.com/garyjia/order-intake/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// SalesOrderRepository implements port.SalesOrderRepository
type SalesOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSalesOrderRepository creates a new sales order repository
func NewSalesOrderRepository(db *sql.DB, logger *zap.Logger) port.SalesOrderRepository {
	return &SalesOrderRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an order record
func (r *SalesOrderRepository) Create(ctx context.Context, order *entity.SalesOrder) error {
	query := `
		INSERT INTO sales_orders (
			po_number, client_name, project_name, project_code,
			order_date, due_date, total_amount, priority, status,
			created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = entity.OrderStatusOpen
	}

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		order.PONumber,
		order.ClientName,
		order.ProjectName,
		order.ProjectCode,
		order.OrderDate,
		order.DueDate,
		order.TotalAmount,
		order.Priority,
		order.Status,
		order.CreatedBy,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create sales order",
			zap.String("po_number", order.PONumber),
			zap.Error(err))
		return fmt.Errorf("failed to create sales order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	order.ID = id
	return nil
}

// GetByID retrieves an order by ID
func (r *SalesOrderRepository) GetByID(ctx context.Context, id int64) (*entity.SalesOrder, error) {
	query := `
		SELECT id, po_number, client_name, project_name, project_code,
			order_date, due_date, total_amount, priority, status,
			created_by, assigned_to, assigned_at, created_at, updated_at
		FROM sales_orders
		WHERE id = ?
	`

	var order entity.SalesOrder
	var assignedTo sql.NullString
	var assignedAt sql.NullTime

	err := r.getExecutor(ctx).QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.PONumber,
		&order.ClientName,
		&order.ProjectName,
		&order.ProjectCode,
		&order.OrderDate,
		&order.DueDate,
		&order.TotalAmount,
		&order.Priority,
		&order.Status,
		&order.CreatedBy,
		&assignedTo,
		&assignedAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get sales order",
			zap.Int64("order_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get sales order: %w", err)
	}

	order.AssignedTo = assignedTo.String
	if assignedAt.Valid {
		order.AssignedAt = &assignedAt.Time
	}

	return &order, nil
}

// Update overwrites the summary fields of an order. Status and assignment are left alone.
func (r *SalesOrderRepository) Update(ctx context.Context, order *entity.SalesOrder) error {
	query := `
		UPDATE sales_orders
		SET po_number = ?, client_name = ?, project_name = ?, project_code = ?,
			order_date = ?, due_date = ?, total_amount = ?, priority = ?, updated_at = ?
		WHERE id = ?
	`

	order.UpdatedAt = time.Now().UTC()
	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		order.PONumber,
		order.ClientName,
		order.ProjectName,
		order.ProjectCode,
		order.OrderDate,
		order.DueDate,
		order.TotalAmount,
		order.Priority,
		order.UpdatedAt,
		order.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update sales order",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update sales order: %w", err)
	}

	n, err := checkAffected(result)
	if err != nil {
		return fmt.Errorf("failed to update sales order: %w", err)
	}
	if n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// Assign records the assignee and moves the order to assigned
func (r *SalesOrderRepository) Assign(ctx context.Context, id int64, assignee string, at time.Time) error {
	query := `
		UPDATE sales_orders
		SET assigned_to = ?, assigned_at = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		assignee, at.UTC(), entity.OrderStatusAssigned, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to assign sales order",
			zap.Int64("order_id", id),
			zap.String("assignee", assignee),
			zap.Error(err))
		return fmt.Errorf("failed to assign sales order: %w", err)
	}

	n, err := checkAffected(result)
	if err != nil {
		return fmt.Errorf("failed to assign sales order: %w", err)
	}
	if n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// getExecutor returns appropriate executor based on context
func (r *SalesOrderRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Verify interface compliance
var _ port.SalesOrderRepository = (*SalesOrderRepository)(nil)
