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

// VendorQuoteRepository implements port.VendorQuoteRepository
type VendorQuoteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVendorQuoteRepository creates a new vendor quote repository
func NewVendorQuoteRepository(db *sql.DB, logger *zap.Logger) port.VendorQuoteRepository {
	return &VendorQuoteRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an unselected quote
func (r *VendorQuoteRepository) Create(ctx context.Context, quote *entity.VendorQuote) error {
	query := `
		INSERT INTO material_request_vendors (
			material_request_id, vendor_id, quoted_price, delivery_days, notes, selected, created_at
		) VALUES (?, ?, ?, ?, ?, 0, ?)
	`

	quote.CreatedAt = time.Now().UTC()
	quote.Selected = false

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		quote.MaterialRequestID,
		quote.VendorID,
		quote.QuotedPrice,
		quote.DeliveryDays,
		quote.Notes,
		quote.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create vendor quote",
			zap.Int64("material_request_id", quote.MaterialRequestID),
			zap.Int64("vendor_id", quote.VendorID),
			zap.Error(err))
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create vendor quote: %w", port.ErrConflict)
		}
		return fmt.Errorf("failed to create vendor quote: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	quote.ID = id
	return nil
}

// ListByMaterialRequest returns the quotes of a material request, cheapest first
func (r *VendorQuoteRepository) ListByMaterialRequest(ctx context.Context, materialRequestID int64) ([]*entity.VendorQuote, error) {
	query := `
		SELECT id, material_request_id, vendor_id, quoted_price, delivery_days, notes, selected, created_at
		FROM material_request_vendors
		WHERE material_request_id = ?
		ORDER BY quoted_price ASC, id ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, materialRequestID)
	if err != nil {
		r.logger.Error("Failed to list vendor quotes",
			zap.Int64("material_request_id", materialRequestID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list vendor quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*entity.VendorQuote
	for rows.Next() {
		var q entity.VendorQuote
		if err := rows.Scan(
			&q.ID,
			&q.MaterialRequestID,
			&q.VendorID,
			&q.QuotedPrice,
			&q.DeliveryDays,
			&q.Notes,
			&q.Selected,
			&q.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vendor quote: %w", err)
		}
		quotes = append(quotes, &q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vendor quotes: %w", err)
	}

	return quotes, nil
}

// ClearSelection unsets selected on every quote of the material request
func (r *VendorQuoteRepository) ClearSelection(ctx context.Context, materialRequestID int64) error {
	_, err := r.getExecutor(ctx).ExecContext(ctx,
		`UPDATE material_request_vendors SET selected = 0 WHERE material_request_id = ?`,
		materialRequestID)
	if err != nil {
		r.logger.Error("Failed to clear vendor selection",
			zap.Int64("material_request_id", materialRequestID),
			zap.Error(err))
		return fmt.Errorf("failed to clear vendor selection: %w", err)
	}
	return nil
}

// MarkSelected selects one vendor's quote and reports the rows it matched
func (r *VendorQuoteRepository) MarkSelected(ctx context.Context, materialRequestID, vendorID int64) (int64, error) {
	result, err := r.getExecutor(ctx).ExecContext(ctx,
		`UPDATE material_request_vendors SET selected = 1 WHERE material_request_id = ? AND vendor_id = ?`,
		materialRequestID, vendorID)
	if err != nil {
		r.logger.Error("Failed to mark vendor selected",
			zap.Int64("material_request_id", materialRequestID),
			zap.Int64("vendor_id", vendorID),
			zap.Error(err))
		return 0, fmt.Errorf("failed to mark vendor selected: %w", err)
	}
	return checkAffected(result)
}

// getExecutor returns appropriate executor based on context
func (r *VendorQuoteRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Verify interface compliance
var _ port.VendorQuoteRepository = (*VendorQuoteRepository)(nil)
