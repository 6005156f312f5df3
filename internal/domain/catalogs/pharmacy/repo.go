package pharmacy

import (
	"context"

	"pharmabill/internal/domain"
)

// Repository defines the interface for pharmacy profile storage.
type Repository interface {
	domain.CatalogRepository[*Pharmacy]

	GetDefault(ctx context.Context) (*Pharmacy, error)
}
