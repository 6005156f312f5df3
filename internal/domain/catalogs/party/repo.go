package party

import (
	"context"

	"pharmabill/internal/core/id"
	"pharmabill/internal/domain"
)

// Repository defines the interface for Party persistence.
type Repository interface {
	domain.CatalogRepository[*Party]

	// FindByGSTIN retrieves a party by GST registration number.
	FindByGSTIN(ctx context.Context, gstin string) (*Party, error)

	// FindByPhone retrieves a party by phone number.
	FindByPhone(ctx context.Context, phone string) (*Party, error)

	// GetForUpdate retrieves a party with row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Party, error)
}
