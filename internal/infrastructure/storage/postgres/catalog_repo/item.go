package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/domain"
	"pharmabill/internal/domain/catalogs/item"
	"pharmabill/internal/infrastructure/storage/postgres"
)

const itemTable = "cat_items"

// ItemRepo implements item.Repository.
type ItemRepo struct {
	*BaseCatalogRepo[*item.Item]
}

// NewItemRepo creates a new item repository.
func NewItemRepo() *ItemRepo {
	return &ItemRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*item.Item](
			itemTable,
			postgres.ExtractDBColumns[item.Item](),
			func() *item.Item { return &item.Item{} },
		),
	}
}

// FindByBarcode retrieves an item by barcode.
func (r *ItemRepo) FindByBarcode(ctx context.Context, barcode string) (*item.Item, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"barcode": barcode}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	it, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("item", barcode)
		}
		return nil, err
	}
	return it, nil
}

// Search retrieves items matching a name or generic-name prefix.
// Prefix match hits the trigram index; the counter sells by the first
// few letters of the brand or the molecule.
func (r *ItemRepo) Search(ctx context.Context, query string, filter domain.ListFilter) (domain.ListResult[*item.Item], error) {
	filter.Search = ""
	pattern := query + "%"

	result := domain.ListResult[*item.Item]{Limit: filter.Limit, Offset: filter.Offset}

	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"generic_name": pattern},
			squirrel.ILike{"code": pattern},
		}).
		OrderBy("name ASC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, err
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("search items: %w", err)
	}
	result.TotalCount = int64(len(result.Items) + filter.Offset)

	return result, nil
}
