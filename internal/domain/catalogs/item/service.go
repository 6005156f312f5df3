package item

import (
	"context"
	"fmt"
	"time"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/core/id"
	"pharmabill/internal/core/tx"
	"pharmabill/internal/domain"
	"pharmabill/pkg/numerator"
)

// Service provides business logic for the Item catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Item]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Item service.
func NewService(
	repo Repository,
	gen numerator.Generator,
	txManager tx.Manager,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Item]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  gen,
		EntityName: "item",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      gen,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks.
func (s *Service) prepareForCreate(ctx context.Context, it *Item) error {
	if it.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("ITM"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		it.Code = code
	}

	return s.checkBarcodeUnique(ctx, it)
}

// prepareForUpdate handles uniqueness checks.
func (s *Service) prepareForUpdate(ctx context.Context, it *Item) error {
	return s.checkBarcodeUnique(ctx, it)
}

func (s *Service) checkBarcodeUnique(ctx context.Context, it *Item) error {
	if it.Barcode == nil || *it.Barcode == "" {
		return nil
	}

	existing, err := s.repo.FindByBarcode(ctx, *it.Barcode)
	if err != nil {
		return nil
	}
	if existing.ID != it.ID {
		return apperror.NewConflict("item with this barcode already exists").
			WithDetail("barcode", *it.Barcode)
	}
	return nil
}

// --- Entity-specific methods ---

// FindByBarcode retrieves an item by barcode.
func (s *Service) FindByBarcode(ctx context.Context, barcode string) (*Item, error) {
	return s.repo.FindByBarcode(ctx, barcode)
}

// Search retrieves items matching a name or generic-name prefix.
func (s *Service) Search(ctx context.Context, query string, filter domain.ListFilter) (domain.ListResult[*Item], error) {
	return s.repo.Search(ctx, query, filter)
}

// ScheduleOf resolves an item code to its drug schedule class. Unknown
// codes report OTC; the rule engine must not block a sale on a catalog
// miss.
func (s *Service) ScheduleOf(ctx context.Context, itemCode string) string {
	it, err := s.repo.GetByCode(ctx, itemCode)
	if err != nil {
		return ""
	}
	return string(it.Schedule)
}

// GetForUpdate retrieves an item with row lock.
func (s *Service) GetForUpdate(ctx context.Context, itemID id.ID) (*Item, error) {
	return s.repo.GetForUpdate(ctx, itemID)
}
