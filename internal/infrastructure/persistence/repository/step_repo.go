package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/entity"
	"github.com/garyjia/order-intake/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// StepRepository implements port.StepRepository
type StepRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStepRepository creates a new step repository
func NewStepRepository(db *sql.DB, logger *zap.Logger) port.StepRepository {
	return &StepRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert stores the payload of one step, replacing whatever was saved before
func (r *StepRepository) Upsert(ctx context.Context, record *entity.StepRecord) error {
	query := `
		INSERT INTO sales_order_steps (order_id, step_key, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(order_id, step_key) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC()
	record.UpdatedAt = now
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		record.OrderID,
		record.StepKey,
		jsonText(record.Data, "{}"),
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save step",
			zap.Int64("order_id", record.OrderID),
			zap.String("step_key", record.StepKey),
			zap.Error(err))
		return fmt.Errorf("failed to save step: %w", err)
	}

	return nil
}

// Get returns the saved payload of a step, or nil when none was saved
func (r *StepRepository) Get(ctx context.Context, orderID int64, stepKey string) (*entity.StepRecord, error) {
	query := `
		SELECT id, order_id, step_key, data, created_at, updated_at
		FROM sales_order_steps
		WHERE order_id = ? AND step_key = ?
	`

	record, err := scanStep(r.getExecutor(ctx).QueryRowContext(ctx, query, orderID, stepKey))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get step",
			zap.Int64("order_id", orderID),
			zap.String("step_key", stepKey),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get step: %w", err)
	}

	return record, nil
}

// ListByOrder returns every saved step of an order ordered by key
func (r *StepRepository) ListByOrder(ctx context.Context, orderID int64) ([]*entity.StepRecord, error) {
	query := `
		SELECT id, order_id, step_key, data, created_at, updated_at
		FROM sales_order_steps
		WHERE order_id = ?
		ORDER BY step_key
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to list steps",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	var records []*entity.StepRecord
	for rows.Next() {
		record, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate steps: %w", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStep(row rowScanner) (*entity.StepRecord, error) {
	var record entity.StepRecord
	var data string
	if err := row.Scan(
		&record.ID,
		&record.OrderID,
		&record.StepKey,
		&data,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	record.Data = json.RawMessage(data)
	return &record, nil
}

// getExecutor returns appropriate executor based on context
func (r *StepRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Verify interface compliance
var _ port.StepRepository = (*StepRepository)(nil)
