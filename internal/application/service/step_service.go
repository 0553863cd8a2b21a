package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/entity"
	"github.com/garyjia/order-intake/internal/domain/order"
)

// StepService stores the per-step payloads of committed orders
type StepService interface {
	// Save overwrites the payload stored under stepKey
	Save(ctx context.Context, orderID int64, stepKey string, data json.RawMessage) error
	Get(ctx context.Context, orderID int64, stepKey string) (*entity.StepRecord, error)
	List(ctx context.Context, orderID int64) ([]*entity.StepRecord, error)
}

type stepServiceImpl struct {
	orderRepo port.SalesOrderRepository
	stepRepo  port.StepRepository
	logger    Logger
}

// NewStepService creates a new StepService
func NewStepService(orderRepo port.SalesOrderRepository, stepRepo port.StepRepository, logger Logger) StepService {
	return &stepServiceImpl{
		orderRepo: orderRepo,
		stepRepo:  stepRepo,
		logger:    logger,
	}
}

func (s *stepServiceImpl) Save(ctx context.Context, orderID int64, stepKey string, data json.RawMessage) error {
	if !order.ValidStepKey(stepKey) {
		return fmt.Errorf("%w: %s", ErrUnknownStep, stepKey)
	}
	if !json.Valid(data) {
		return &ValidationError{Messages: []string{"step payload must be valid JSON"}}
	}
	if err := s.requireOrder(ctx, orderID); err != nil {
		return err
	}

	record := &entity.StepRecord{OrderID: orderID, StepKey: stepKey, Data: data}
	if err := s.stepRepo.Upsert(ctx, record); err != nil {
		s.logger.Error("Failed to save step", "error", err, "order_id", orderID, "step_key", stepKey)
		return fmt.Errorf("save step: %w", err)
	}

	s.logger.Info("Step saved", "order_id", orderID, "step_key", stepKey)
	return nil
}

func (s *stepServiceImpl) Get(ctx context.Context, orderID int64, stepKey string) (*entity.StepRecord, error) {
	if !order.ValidStepKey(stepKey) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, stepKey)
	}

	record, err := s.stepRepo.Get(ctx, orderID, stepKey)
	if err != nil {
		return nil, fmt.Errorf("get step: %w", err)
	}
	if record == nil {
		return nil, ErrStepNotFound
	}
	return record, nil
}

func (s *stepServiceImpl) List(ctx context.Context, orderID int64) ([]*entity.StepRecord, error) {
	if err := s.requireOrder(ctx, orderID); err != nil {
		return nil, err
	}

	records, err := s.stepRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	return records, nil
}

func (s *stepServiceImpl) requireOrder(ctx context.Context, orderID int64) error {
	existing, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if existing == nil {
		return ErrOrderNotFound
	}
	return nil
}
