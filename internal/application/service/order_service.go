package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/order-intake/internal/application/dispatcher"
	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/entity"
	"github.com/garyjia/order-intake/internal/domain/event"
	"github.com/garyjia/order-intake/internal/domain/order"
)

// OrderService manages committed sales orders
type OrderService interface {
	Create(ctx context.Context, summary order.Summary) (*entity.SalesOrder, error)
	Get(ctx context.Context, id int64) (*entity.SalesOrder, error)
	Update(ctx context.Context, id int64, summary order.Summary) (*entity.SalesOrder, error)
	Assign(ctx context.Context, id int64, req port.AssignRequest) (*entity.SalesOrder, error)
}

type orderServiceImpl struct {
	orderRepo  port.SalesOrderRepository
	dispatcher dispatcher.Dispatcher
	logger     Logger
	now        func() time.Time
}

// NewOrderService creates a new OrderService. d may be nil.
func NewOrderService(orderRepo port.SalesOrderRepository, d dispatcher.Dispatcher, logger Logger) OrderService {
	return &orderServiceImpl{
		orderRepo:  orderRepo,
		dispatcher: d,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *orderServiceImpl) Create(ctx context.Context, summary order.Summary) (*entity.SalesOrder, error) {
	if err := validateStruct(summary); err != nil {
		return nil, err
	}

	o := &entity.SalesOrder{Status: entity.OrderStatusOpen}
	applySummary(o, summary)
	o.CreatedBy = summary.CreatedBy

	if err := s.orderRepo.Create(ctx, o); err != nil {
		s.logger.Error("Failed to create order", "error", err, "po_number", summary.PONumber)
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("Order created", "order_id", o.ID, "po_number", o.PONumber, "client_name", o.ClientName)
	s.publish(ctx, event.NewEvent(event.TypeOrderCreated, o.ID, map[string]interface{}{
		dispatcher.PayloadPONumber:   o.PONumber,
		dispatcher.PayloadClientName: o.ClientName,
		dispatcher.PayloadUserID:     o.CreatedBy,
	}))
	return o, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, id int64) (*entity.SalesOrder, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *orderServiceImpl) Update(ctx context.Context, id int64, summary order.Summary) (*entity.SalesOrder, error) {
	if err := validateStruct(summary); err != nil {
		return nil, err
	}

	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applySummary(o, summary)

	if err := s.orderRepo.Update(ctx, o); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		s.logger.Error("Failed to update order", "error", err, "order_id", id)
		return nil, fmt.Errorf("update order: %w", err)
	}

	s.logger.Info("Order updated", "order_id", id)
	return o, nil
}

func (s *orderServiceImpl) Assign(ctx context.Context, id int64, req port.AssignRequest) (*entity.SalesOrder, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	at := req.AssignedAt
	if at.IsZero() {
		at = s.now()
	}

	if err := s.orderRepo.Assign(ctx, id, req.AssignedTo, at); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		s.logger.Error("Failed to assign order", "error", err, "order_id", id)
		return nil, fmt.Errorf("assign order: %w", err)
	}

	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order assigned", "order_id", id, "assigned_to", req.AssignedTo)
	s.publish(ctx, event.NewEvent(event.TypeOrderAssigned, id, map[string]interface{}{
		dispatcher.PayloadAssignee:   req.AssignedTo,
		dispatcher.PayloadPONumber:   o.PONumber,
		dispatcher.PayloadClientName: o.ClientName,
	}))
	return o, nil
}

func (s *orderServiceImpl) publish(ctx context.Context, evt *event.Event) {
	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, evt)
	}
}

func applySummary(o *entity.SalesOrder, summary order.Summary) {
	o.PONumber = summary.PONumber
	o.ClientName = summary.ClientName
	o.ProjectName = summary.ProjectName
	o.ProjectCode = summary.ProjectCode
	o.OrderDate = summary.OrderDate
	o.DueDate = summary.DueDate
	o.TotalAmount = summary.TotalAmount
	o.Priority = summary.Priority
}
