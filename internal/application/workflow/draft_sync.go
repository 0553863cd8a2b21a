package workflow

import (
	"context"
	"fmt"

	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/order"
)

// DraftSynchronizer keeps the server-side draft in step with the session.
// Every call sends the complete form tree.
type DraftSynchronizer struct {
	api     port.DraftAPI
	ownerID string
	logger  Logger
}

// NewDraftSynchronizer creates a synchronizer writing drafts owned by ownerID
func NewDraftSynchronizer(api port.DraftAPI, ownerID string, logger Logger) *DraftSynchronizer {
	return &DraftSynchronizer{
		api:     api,
		ownerID: ownerID,
		logger:  logger,
	}
}

// CreateDraft stores the first draft of a session and returns its id
func (d *DraftSynchronizer) CreateDraft(ctx context.Context, tree order.FormTree, currentStep int) (int64, error) {
	id, err := d.api.CreateDraft(ctx, port.DraftRequest{
		FormData:    tree,
		CurrentStep: currentStep,
		PODocuments: []order.Document{},
		OwnerID:     d.ownerID,
	})
	if err != nil {
		d.logger.Error("Failed to create draft", "error", err, "current_step", currentStep)
		return 0, &DraftCreationError{Err: err}
	}

	d.logger.Info("Draft created", "draft_id", id)
	return id, nil
}

// UpdateDraft replaces the draft; the server drops anything missing from tree
func (d *DraftSynchronizer) UpdateDraft(ctx context.Context, id int64, tree order.FormTree, currentStep int, docs []order.Document) error {
	if docs == nil {
		docs = []order.Document{}
	}
	err := d.api.UpdateDraft(ctx, id, port.DraftRequest{
		FormData:    tree,
		CurrentStep: currentStep,
		PODocuments: docs,
		OwnerID:     d.ownerID,
	})
	if err != nil {
		d.logger.Error("Failed to update draft", "error", err, "draft_id", id)
		return fmt.Errorf("update draft %d: %w", id, err)
	}
	return nil
}

// DeleteDraft removes the draft. Callers treat failure as non-fatal.
func (d *DraftSynchronizer) DeleteDraft(ctx context.Context, id int64) error {
	if err := d.api.DeleteDraft(ctx, id); err != nil {
		d.logger.Error("Failed to delete draft", "error", err, "draft_id", id)
		return fmt.Errorf("delete draft %d: %w", id, err)
	}
	return nil
}

// LoadDraft fetches a stored draft for resumption
func (d *DraftSynchronizer) LoadDraft(ctx context.Context, id int64) (*port.DraftRequest, error) {
	draft, err := d.api.GetDraft(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load draft %d: %w", id, err)
	}
	return draft, nil
}
