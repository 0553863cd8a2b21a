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

// DraftRepository implements port.DraftRepository
type DraftRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDraftRepository creates a new draft repository
func NewDraftRepository(db *sql.DB, logger *zap.Logger) port.DraftRepository {
	return &DraftRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a draft and sets its ID and timestamps
func (r *DraftRepository) Create(ctx context.Context, draft *entity.Draft) error {
	query := `
		INSERT INTO sales_order_drafts (owner_id, form_data, current_step, po_documents, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	draft.CreatedAt = now
	draft.UpdatedAt = now

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		draft.OwnerID,
		jsonText(draft.FormData, "{}"),
		draft.CurrentStep,
		jsonText(draft.PODocuments, "[]"),
		draft.CreatedAt,
		draft.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create draft", zap.Error(err))
		return fmt.Errorf("failed to create draft: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	draft.ID = id
	return nil
}

// GetByID returns the draft, or nil when it does not exist
func (r *DraftRepository) GetByID(ctx context.Context, id int64) (*entity.Draft, error) {
	query := `
		SELECT id, owner_id, form_data, current_step, po_documents, created_at, updated_at
		FROM sales_order_drafts
		WHERE id = ?
	`

	var d entity.Draft
	var formData, docs string
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, id).Scan(
		&d.ID,
		&d.OwnerID,
		&formData,
		&d.CurrentStep,
		&docs,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get draft", zap.Int64("draft_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	d.FormData = json.RawMessage(formData)
	d.PODocuments = json.RawMessage(docs)
	return &d, nil
}

// Update overwrites form data, current step and documents of an existing draft
func (r *DraftRepository) Update(ctx context.Context, draft *entity.Draft) error {
	query := `
		UPDATE sales_order_drafts
		SET form_data = ?, current_step = ?, po_documents = ?, updated_at = ?
		WHERE id = ?
	`

	draft.UpdatedAt = time.Now().UTC()
	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		jsonText(draft.FormData, "{}"),
		draft.CurrentStep,
		jsonText(draft.PODocuments, "[]"),
		draft.UpdatedAt,
		draft.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update draft", zap.Int64("draft_id", draft.ID), zap.Error(err))
		return fmt.Errorf("failed to update draft: %w", err)
	}

	n, err := checkAffected(result)
	if err != nil {
		return fmt.Errorf("failed to update draft: %w", err)
	}
	if n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// Delete removes a draft
func (r *DraftRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.getExecutor(ctx).ExecContext(ctx, `DELETE FROM sales_order_drafts WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete draft", zap.Int64("draft_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	n, err := checkAffected(result)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// DeleteUpdatedBefore purges drafts untouched since cutoff
func (r *DraftRepository) DeleteUpdatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.getExecutor(ctx).ExecContext(ctx,
		`DELETE FROM sales_order_drafts WHERE updated_at < ?`, cutoff.UTC())
	if err != nil {
		r.logger.Error("Failed to purge drafts", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, fmt.Errorf("failed to purge drafts: %w", err)
	}
	return checkAffected(result)
}

// getExecutor returns the transaction carried by ctx, or the pool
func (r *DraftRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Verify interface compliance
var _ port.DraftRepository = (*DraftRepository)(nil)
