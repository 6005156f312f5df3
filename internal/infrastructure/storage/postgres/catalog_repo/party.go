package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/domain/catalogs/party"
	"pharmabill/internal/infrastructure/storage/postgres"
)

const partyTable = "cat_parties"

// PartyRepo implements party.Repository.
type PartyRepo struct {
	*BaseCatalogRepo[*party.Party]
}

// NewPartyRepo creates a new party repository.
func NewPartyRepo() *PartyRepo {
	return &PartyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*party.Party](
			partyTable,
			postgres.ExtractDBColumns[party.Party](),
			func() *party.Party { return &party.Party{} },
		),
	}
}

// FindByGSTIN retrieves a party by GST registration number.
func (r *PartyRepo) FindByGSTIN(ctx context.Context, gstin string) (*party.Party, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"gstin": gstin}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	p, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("party", gstin)
		}
		return nil, err
	}
	return p, nil
}

// FindByPhone retrieves a party by phone number.
func (r *PartyRepo) FindByPhone(ctx context.Context, phone string) (*party.Party, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"phone": phone}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	p, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("party", phone)
		}
		return nil, err
	}
	return p, nil
}
