package item

import (
	"context"

	"pharmabill/internal/core/id"
	"pharmabill/internal/domain"
)

// Repository defines the interface for Item persistence.
type Repository interface {
	domain.CatalogRepository[*Item]

	// FindByBarcode retrieves an item by barcode.
	FindByBarcode(ctx context.Context, barcode string) (*Item, error)

	// GetForUpdate retrieves an item with row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Item, error)

	// Search retrieves items matching a name or generic-name prefix.
	Search(ctx context.Context, query string, filter domain.ListFilter) (domain.ListResult[*Item], error)
}
