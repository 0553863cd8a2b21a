package service

import (
	"context"
	"fmt"

	"github.com/garyjia/order-intake/internal/application/dispatcher"
	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/entity"
	"github.com/garyjia/order-intake/internal/domain/event"
)

// VendorService manages vendor quotes of material requests
type VendorService interface {
	AddQuote(ctx context.Context, materialRequestID int64, req port.VendorQuoteRequest) (*entity.VendorQuote, error)
	ListQuotes(ctx context.Context, materialRequestID int64) ([]*entity.VendorQuote, error)
	// SelectVendor makes vendorID the only selected quote of the request.
	// It reports false, without error, when the vendor has no quote there;
	// the request is then left with nothing selected.
	SelectVendor(ctx context.Context, materialRequestID, vendorID int64) (bool, error)
}

type vendorServiceImpl struct {
	quoteRepo  port.VendorQuoteRepository
	txManager  port.TransactionManager
	dispatcher dispatcher.Dispatcher
	logger     Logger
}

// NewVendorService creates a new VendorService. d may be nil.
func NewVendorService(
	quoteRepo port.VendorQuoteRepository,
	txManager port.TransactionManager,
	d dispatcher.Dispatcher,
	logger Logger,
) VendorService {
	return &vendorServiceImpl{
		quoteRepo:  quoteRepo,
		txManager:  txManager,
		dispatcher: d,
		logger:     logger,
	}
}

func (s *vendorServiceImpl) AddQuote(ctx context.Context, materialRequestID int64, req port.VendorQuoteRequest) (*entity.VendorQuote, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	quote := &entity.VendorQuote{
		MaterialRequestID: materialRequestID,
		VendorID:          req.VendorID,
		QuotedPrice:       req.QuotedPrice,
		DeliveryDays:      req.DeliveryDays,
		Notes:             req.Notes,
	}
	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		s.logger.Error("Failed to add vendor quote", "error", err,
			"material_request_id", materialRequestID, "vendor_id", req.VendorID)
		return nil, fmt.Errorf("add vendor quote: %w", err)
	}

	s.logger.Info("Vendor quote added", "quote_id", quote.ID, "material_request_id", materialRequestID)
	return quote, nil
}

func (s *vendorServiceImpl) ListQuotes(ctx context.Context, materialRequestID int64) ([]*entity.VendorQuote, error) {
	quotes, err := s.quoteRepo.ListByMaterialRequest(ctx, materialRequestID)
	if err != nil {
		return nil, fmt.Errorf("list vendor quotes: %w", err)
	}
	if quotes == nil {
		quotes = []*entity.VendorQuote{}
	}
	return quotes, nil
}

func (s *vendorServiceImpl) SelectVendor(ctx context.Context, materialRequestID, vendorID int64) (bool, error) {
	var matched int64

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.quoteRepo.ClearSelection(txCtx, materialRequestID); err != nil {
			return fmt.Errorf("clear selection: %w", err)
		}

		n, err := s.quoteRepo.MarkSelected(txCtx, materialRequestID, vendorID)
		if err != nil {
			return fmt.Errorf("mark selected: %w", err)
		}
		matched = n
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to select vendor", "error", err,
			"material_request_id", materialRequestID, "vendor_id", vendorID)
		return false, err
	}

	if matched == 0 {
		s.logger.Info("Vendor has no quote, selection cleared",
			"material_request_id", materialRequestID, "vendor_id", vendorID)
		return false, nil
	}

	s.logger.Info("Vendor selected", "material_request_id", materialRequestID, "vendor_id", vendorID)
	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeVendorSelected, 0, map[string]interface{}{
			"material_request_id": materialRequestID,
			"vendor_id":           vendorID,
		}))
	}
	return true, nil
}
