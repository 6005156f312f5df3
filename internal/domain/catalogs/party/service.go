package party

import (
	"context"
	"fmt"
	"time"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/core/tx"
	"pharmabill/internal/domain"
	"pharmabill/pkg/numerator"
)

// Service provides business logic for the Party catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Party]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Party service.
func NewService(
	repo Repository,
	gen numerator.Generator,
	txManager tx.Manager,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Party]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  gen,
		EntityName: "party",
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
func (s *Service) prepareForCreate(ctx context.Context, p *Party) error {
	if p.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("PT"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}

	return s.checkGSTINUnique(ctx, p)
}

// prepareForUpdate handles uniqueness checks.
func (s *Service) prepareForUpdate(ctx context.Context, p *Party) error {
	return s.checkGSTINUnique(ctx, p)
}

func (s *Service) checkGSTINUnique(ctx context.Context, p *Party) error {
	if p.GSTIN == nil || *p.GSTIN == "" {
		return nil
	}

	existing, err := s.repo.FindByGSTIN(ctx, *p.GSTIN)
	if err != nil {
		return nil
	}
	if existing.ID != p.ID {
		return apperror.NewConflict("party with this GSTIN already exists").
			WithDetail("gstin", *p.GSTIN)
	}
	return nil
}

// --- Entity-specific methods ---

// FindByGSTIN retrieves a party by GST registration number.
func (s *Service) FindByGSTIN(ctx context.Context, gstin string) (*Party, error) {
	return s.repo.FindByGSTIN(ctx, gstin)
}

// FindByPhone retrieves a party by phone number. Counter staff look up
// repeat customers this way.
func (s *Service) FindByPhone(ctx context.Context, phone string) (*Party, error) {
	return s.repo.FindByPhone(ctx, phone)
}
