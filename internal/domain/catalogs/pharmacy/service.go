package pharmacy

import (
	"context"

	"pharmabill/internal/core/tx"
	"pharmabill/internal/domain"
	"pharmabill/pkg/numerator"
)

// Service provides business logic for the Pharmacy catalog.
type Service struct {
	*domain.CatalogService[*Pharmacy]
	repo Repository
}

// NewService creates a new Pharmacy service.
func NewService(repo Repository, gen numerator.Generator, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Pharmacy]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  gen,
		EntityName: "pharmacy",
	})

	return &Service{
		CatalogService: base,
		repo:           repo,
	}
}

// GetDefault retrieves the default pharmacy profile.
func (s *Service) GetDefault(ctx context.Context) (*Pharmacy, error) {
	return s.repo.GetDefault(ctx)
}
