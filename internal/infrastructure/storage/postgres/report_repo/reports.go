// Package report_repo provides PostgreSQL implementations for report repositories.
// TxManager is obtained from context, so the same repo instance works inside
// and outside transactions.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pharmabill/internal/core/id"
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/pricing"
	"pharmabill/internal/domain/reports"
	"pharmabill/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo() *ReportRepo {
	return &ReportRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// getTxManager retrieves TxManager from context.
func (r *ReportRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// salesLineRow is the raw line as stored; rescanned into pricing inputs.
type salesLineRow struct {
	ItemCode        string         `db:"item_code"`
	ItemName        string         `db:"item_name"`
	Batch           string         `db:"batch"`
	Quantity        types.Quantity `db:"quantity"`
	Rate            types.Money    `db:"rate"`
	MRP             types.Money    `db:"mrp"`
	DiscountPercent types.Money    `db:"discount_percent"`
	CGSTPercent     types.Money    `db:"cgst_percent"`
	SGSTPercent     types.Money    `db:"sgst_percent"`
}

func (row salesLineRow) lineInput() pricing.LineInput {
	return pricing.LineInput{
		ItemCode:        row.ItemCode,
		ItemName:        row.ItemName,
		Batch:           row.Batch,
		Quantity:        row.Quantity,
		Rate:            row.Rate,
		MRP:             row.MRP,
		DiscountPercent: row.DiscountPercent,
		CGSTPercent:     row.CGSTPercent,
		SGSTPercent:     row.SGSTPercent,
	}
}

// GetPostedSalesLines returns lines of sales invoices posted in the period.
func (r *ReportRepo) GetPostedSalesLines(ctx context.Context, from, to time.Time) ([]pricing.LineInput, error) {
	q := r.builder.Select(
		"l.item_code", "l.item_name", "l.batch",
		"l.quantity", "l.rate", "l.mrp", "l.discount_percent",
		"l.cgst_percent", "l.sgst_percent",
	).
		From("doc_sales_invoice_lines l").
		Join("doc_sales_invoices d ON d.id = l.document_id").
		Where(squirrel.Eq{"d.posted": true, "d.deletion_mark": false}).
		Where(squirrel.GtOrEq{"d.date": from}).
		Where(squirrel.LtOrEq{"d.date": to})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []salesLineRow
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select sales lines: %w", err)
	}

	lines := make([]pricing.LineInput, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, row.lineInput())
	}
	return lines, nil
}

// purchaseLineRow carries the supplier grouping columns next to the line.
type purchaseLineRow struct {
	SupplierID   id.ID  `db:"supplier_id"`
	SupplierName string `db:"supplier_name"`
	DocumentID   id.ID  `db:"document_id"`

	ItemCode        string         `db:"item_code"`
	ItemName        string         `db:"item_name"`
	Batch           string         `db:"batch"`
	Quantity        types.Quantity `db:"quantity"`
	FreeQuantity    types.Quantity `db:"free_quantity"`
	Rate            types.Money    `db:"rate"`
	MRP             types.Money    `db:"mrp"`
	DiscountPercent types.Money    `db:"discount_percent"`
	CGSTPercent     types.Money    `db:"cgst_percent"`
	SGSTPercent     types.Money    `db:"sgst_percent"`
}

// GetSupplierPurchases returns posted purchase lines grouped by supplier.
func (r *ReportRepo) GetSupplierPurchases(ctx context.Context, filter reports.ProfitFilter) ([]reports.SupplierPurchases, error) {
	q := r.builder.Select(
		"d.supplier_id", "COALESCE(p.name, '') AS supplier_name", "l.document_id",
		"l.item_code", "l.item_name", "l.batch",
		"l.quantity", "l.free_quantity", "l.rate", "l.mrp", "l.discount_percent",
		"l.cgst_percent", "l.sgst_percent",
	).
		From("doc_purchase_invoice_lines l").
		Join("doc_purchase_invoices d ON d.id = l.document_id").
		LeftJoin("cat_parties p ON p.id = d.supplier_id").
		Where(squirrel.Eq{"d.posted": true, "d.deletion_mark": false}).
		OrderBy("d.supplier_id", "l.document_id", "l.line_no")

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"d.date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"d.date": *filter.ToDate})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"d.supplier_id": *filter.SupplierID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []purchaseLineRow
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select purchase lines: %w", err)
	}

	// Rows arrive ordered by supplier; fold into groups counting distinct
	// documents along the way.
	var groups []reports.SupplierPurchases
	seenDocs := make(map[id.ID]bool)

	for _, row := range rows {
		if len(groups) == 0 || groups[len(groups)-1].SupplierID != row.SupplierID {
			groups = append(groups, reports.SupplierPurchases{
				SupplierID:   row.SupplierID,
				SupplierName: row.SupplierName,
			})
			seenDocs = make(map[id.ID]bool)
		}
		g := &groups[len(groups)-1]
		if !seenDocs[row.DocumentID] {
			seenDocs[row.DocumentID] = true
			g.InvoiceCount++
		}
		g.Lines = append(g.Lines, pricing.LineInput{
			ItemCode:        row.ItemCode,
			ItemName:        row.ItemName,
			Batch:           row.Batch,
			Quantity:        row.Quantity,
			FreeQuantity:    row.FreeQuantity,
			Rate:            row.Rate,
			MRP:             row.MRP,
			DiscountPercent: row.DiscountPercent,
			CGSTPercent:     row.CGSTPercent,
			SGSTPercent:     row.SGSTPercent,
		})
	}

	return groups, nil
}

// GetDailySales returns per-day aggregates of posted sales invoices.
// Aggregation runs over the stored totals snapshot, not the lines.
func (r *ReportRepo) GetDailySales(ctx context.Context, from, to time.Time) ([]reports.DailySalesRow, error) {
	sql := `
		SELECT
			date_trunc('day', date) AS day,
			COUNT(*) AS invoice_count,
			COALESCE(SUM(taxable_total), 0) AS taxable,
			COALESCE(SUM(cgst_total + sgst_total), 0) AS tax,
			COALESCE(SUM(grand_total), 0) AS grand_total
		FROM doc_sales_invoices
		WHERE posted = true
		  AND deletion_mark = false
		  AND date >= $1
		  AND date <= $2
		GROUP BY day
		ORDER BY day
	`

	type dailyRow struct {
		Day          time.Time   `db:"day"`
		InvoiceCount int         `db:"invoice_count"`
		Taxable      types.Money `db:"taxable"`
		Tax          types.Money `db:"tax"`
		GrandTotal   types.Money `db:"grand_total"`
	}

	var rows []dailyRow
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, from, to); err != nil {
		return nil, fmt.Errorf("select daily sales: %w", err)
	}

	out := make([]reports.DailySalesRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, reports.DailySalesRow{
			Date:         row.Day,
			InvoiceCount: row.InvoiceCount,
			Taxable:      row.Taxable,
			Tax:          row.Tax,
			GrandTotal:   row.GrandTotal,
		})
	}
	return out, nil
}

// Ensure interface compliance.
var _ reports.Repository = (*ReportRepo)(nil)
