package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/entity"
	"github.com/garyjia/order-intake/internal/domain/order"
)

// DraftService stores in-progress wizard sessions
type DraftService interface {
	Create(ctx context.Context, req port.DraftRequest) (*entity.Draft, error)
	Get(ctx context.Context, id int64) (*entity.Draft, error)
	// Update replaces the stored tree; fields missing from req are dropped
	Update(ctx context.Context, id int64, req port.DraftRequest) error
	Delete(ctx context.Context, id int64) error
	// PurgeStale removes drafts not updated within retention
	PurgeStale(ctx context.Context, retention time.Duration) (int64, error)
}

type draftServiceImpl struct {
	draftRepo port.DraftRepository
	logger    Logger
}

// NewDraftService creates a new DraftService
func NewDraftService(draftRepo port.DraftRepository, logger Logger) DraftService {
	return &draftServiceImpl{
		draftRepo: draftRepo,
		logger:    logger,
	}
}

func (s *draftServiceImpl) Create(ctx context.Context, req port.DraftRequest) (*entity.Draft, error) {
	draft, err := draftFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.draftRepo.Create(ctx, draft); err != nil {
		s.logger.Error("Failed to create draft", "error", err)
		return nil, fmt.Errorf("create draft: %w", err)
	}

	s.logger.Info("Draft created", "draft_id", draft.ID, "current_step", draft.CurrentStep)
	return draft, nil
}

func (s *draftServiceImpl) Get(ctx context.Context, id int64) (*entity.Draft, error) {
	draft, err := s.draftRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

func (s *draftServiceImpl) Update(ctx context.Context, id int64, req port.DraftRequest) error {
	draft, err := draftFromRequest(req)
	if err != nil {
		return err
	}
	draft.ID = id

	if err := s.draftRepo.Update(ctx, draft); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return ErrDraftNotFound
		}
		s.logger.Error("Failed to update draft", "error", err, "draft_id", id)
		return fmt.Errorf("update draft: %w", err)
	}

	s.logger.Info("Draft updated", "draft_id", id, "current_step", draft.CurrentStep)
	return nil
}

func (s *draftServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.draftRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return ErrDraftNotFound
		}
		s.logger.Error("Failed to delete draft", "error", err, "draft_id", id)
		return fmt.Errorf("delete draft: %w", err)
	}

	s.logger.Info("Draft deleted", "draft_id", id)
	return nil
}

func (s *draftServiceImpl) PurgeStale(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.draftRepo.DeleteUpdatedBefore(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("purge drafts: %w", err)
	}
	if n > 0 {
		s.logger.Info("Stale drafts purged", "count", n, "retention", retention.String())
	}
	return n, nil
}

func draftFromRequest(req port.DraftRequest) (*entity.Draft, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	tree := req.FormData
	if tree == nil {
		tree = order.FormTree{}
	}
	formData, err := json.Marshal(tree)
	if err != nil {
		return nil, &ValidationError{Messages: []string{fmt.Sprintf("formData is not serializable: %v", err)}}
	}

	docs := req.PODocuments
	if docs == nil {
		docs = []order.Document{}
	}
	poDocuments, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("encode po documents: %w", err)
	}

	return &entity.Draft{
		OwnerID:     req.OwnerID,
		FormData:    formData,
		CurrentStep: req.CurrentStep,
		PODocuments: poDocuments,
	}, nil
}
