package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pharmabill/internal/core/id"
	"pharmabill/internal/domain"
	"pharmabill/internal/domain/documents/purchase_invoice"
	"pharmabill/internal/infrastructure/storage/postgres"
)

const (
	purchaseInvoicesTable     = "doc_purchase_invoices"
	purchaseInvoiceLinesTable = "doc_purchase_invoice_lines"
)

// PurchaseInvoiceRepo implements purchase_invoice.Repository.
type PurchaseInvoiceRepo struct {
	*BaseDocumentRepo[*purchase_invoice.PurchaseInvoice]
}

// NewPurchaseInvoiceRepo creates a new purchase invoice repository.
func NewPurchaseInvoiceRepo() *PurchaseInvoiceRepo {
	return &PurchaseInvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*purchase_invoice.PurchaseInvoice](
			purchaseInvoicesTable,
			postgres.ExtractDBColumns[purchase_invoice.PurchaseInvoice](),
			func() *purchase_invoice.PurchaseInvoice { return &purchase_invoice.PurchaseInvoice{} },
		),
	}
}

// GetLines retrieves lines for a purchase invoice.
func (r *PurchaseInvoiceRepo) GetLines(ctx context.Context, docID id.ID) ([]purchase_invoice.PurchaseInvoiceLine, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "item_code", "item_name", "batch",
			"quantity", "free_quantity", "rate", "mrp", "discount_percent",
			"cgst_percent", "sgst_percent",
			"hsn_code", "manufacturer", "pack_size", "expiry_date",
			"gross", "discount_amount", "taxable", "cgst_amount", "sgst_amount", "total",
		).
		From(purchaseInvoiceLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase_invoice.PurchaseInvoiceLine
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for a purchase invoice (delete existing + insert new).
func (r *PurchaseInvoiceRepo) SaveLines(ctx context.Context, docID id.ID, lines []purchase_invoice.PurchaseInvoiceLine) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + purchaseInvoiceLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(purchaseInvoiceLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "item_code", "item_name", "batch",
			"quantity", "free_quantity", "rate", "mrp", "discount_percent",
			"cgst_percent", "sgst_percent",
			"hsn_code", "manufacturer", "pack_size", "expiry_date",
			"gross", "discount_amount", "taxable", "cgst_amount", "sgst_amount", "total",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ItemCode, line.ItemName, line.Batch,
			line.Quantity, line.FreeQuantity, line.Rate, line.MRP, line.DiscountPercent,
			line.CGSTPercent, line.SGSTPercent,
			line.HSNCode, line.Manufacturer, line.PackSize, line.ExpiryDate,
			line.Gross, line.DiscountAmount, line.Taxable, line.CGSTAmount, line.SGSTAmount, line.Total,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// List retrieves purchase invoices with filtering.
func (r *PurchaseInvoiceRepo) List(ctx context.Context, filter purchase_invoice.ListFilter) (domain.ListResult[*purchase_invoice.PurchaseInvoice], error) {
	result := domain.ListResult[*purchase_invoice.PurchaseInvoice]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}

	if filter.SupplierDocNumber != nil {
		q = q.Where(squirrel.Eq{"supplier_doc_number": *filter.SupplierDocNumber})
	}

	if filter.Posted != nil {
		q = q.Where(squirrel.Eq{"posted": *filter.Posted})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": searchPattern},
			squirrel.ILike{"supplier_doc_number": searchPattern},
		})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}
