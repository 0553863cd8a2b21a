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

const defaultNotificationLimit = 50

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new notification record
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (
			user_id, message, type, related_id, related_type, read_status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	if n.Type == "" {
		n.Type = entity.NotificationTypeInfo
	}
	n.CreatedAt = time.Now().UTC()

	var relatedID sql.NullInt64
	if n.RelatedID != nil {
		relatedID = sql.NullInt64{Int64: *n.RelatedID, Valid: true}
	}

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		n.UserID,
		n.Message,
		n.Type,
		relatedID,
		n.RelatedType,
		n.ReadStatus,
		n.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification",
			zap.String("user_id", n.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	n.ID = id
	return nil
}

// ListByUser returns the newest notifications of a user first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	query := `
		SELECT id, user_id, message, type, related_id, related_type, read_status, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	if limit <= 0 {
		limit = defaultNotificationLimit
	}

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, userID, limit)
	if err != nil {
		r.logger.Error("Failed to list notifications",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		var relatedID sql.NullInt64
		var relatedType sql.NullString

		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Message,
			&n.Type,
			&relatedID,
			&relatedType,
			&n.ReadStatus,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		if relatedID.Valid {
			id := relatedID.Int64
			n.RelatedID = &id
		}
		n.RelatedType = relatedType.String
		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead flags a notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	result, err := r.getExecutor(ctx).ExecContext(ctx,
		`UPDATE notifications SET read_status = 1 WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to mark notification as read",
			zap.Int64("id", id),
			zap.Error(err))
		return fmt.Errorf("failed to mark read: %w", err)
	}

	n, err := checkAffected(result)
	if err != nil {
		return fmt.Errorf("failed to mark read: %w", err)
	}
	if n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// getExecutor returns appropriate executor based on context
func (r *NotificationRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)
