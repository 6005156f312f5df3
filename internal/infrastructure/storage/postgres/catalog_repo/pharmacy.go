package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/domain/catalogs/pharmacy"
	"pharmabill/internal/infrastructure/storage/postgres"
)

const pharmacyTable = "cat_pharmacies"

// PharmacyRepo implements pharmacy.Repository.
type PharmacyRepo struct {
	*BaseCatalogRepo[*pharmacy.Pharmacy]
}

// NewPharmacyRepo creates a new pharmacy repository.
func NewPharmacyRepo() *PharmacyRepo {
	return &PharmacyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*pharmacy.Pharmacy](
			pharmacyTable,
			postgres.ExtractDBColumns[pharmacy.Pharmacy](),
			func() *pharmacy.Pharmacy { return &pharmacy.Pharmacy{} },
		),
	}
}

// GetDefault retrieves the profile printed on invoices.
func (r *PharmacyRepo) GetDefault(ctx context.Context) (*pharmacy.Pharmacy, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"is_default": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	p, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("pharmacy", "default")
		}
		return nil, err
	}
	return p, nil
}
