package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/garyjia/order-intake/internal/application/dispatcher"
	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/entity"
	"github.com/garyjia/order-intake/internal/domain/event"
)

// NotificationService records in-app notifications and fans them out to chat
type NotificationService interface {
	Send(ctx context.Context, req port.NotificationRequest) (*entity.Notification, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	dispatcher       dispatcher.Dispatcher
	logger           Logger
}

// NewNotificationService creates a new NotificationService. d may be nil.
func NewNotificationService(notificationRepo port.NotificationRepository, d dispatcher.Dispatcher, logger Logger) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		dispatcher:       d,
		logger:           logger,
	}
}

// Send persists the notification; chat delivery happens asynchronously and
// never fails the call
func (s *notificationServiceImpl) Send(ctx context.Context, req port.NotificationRequest) (*entity.Notification, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	n := &entity.Notification{
		UserID:      req.UserID,
		Message:     req.Message,
		Type:        req.Type,
		RelatedID:   req.RelatedID,
		RelatedType: req.RelatedType,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification", "error", err, "user_id", req.UserID)
		return nil, fmt.Errorf("create notification: %w", err)
	}

	s.logger.Info("Notification created", "notification_id", n.ID, "user_id", n.UserID, "type", n.Type)

	if s.dispatcher != nil {
		var orderID int64
		if n.RelatedID != nil && n.RelatedType == entity.RelatedTypeSalesOrder {
			orderID = *n.RelatedID
		}
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeNotificationCreated, orderID, map[string]interface{}{
			dispatcher.PayloadUserID:  n.UserID,
			dispatcher.PayloadMessage: n.Message,
		}))
	}
	return n, nil
}

func (s *notificationServiceImpl) ListForUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	list, err := s.notificationRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if list == nil {
		list = []*entity.Notification{}
	}
	return list, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, id int64) error {
	if err := s.notificationRepo.MarkRead(ctx, id); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
