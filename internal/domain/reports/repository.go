package reports

import (
	"context"
	"time"

	"pharmabill/internal/domain/pricing"
)

// Repository defines report data access interface. Line-level reports
// return raw priced inputs; the pricing package derives the figures.
type Repository interface {
	// GetPostedSalesLines returns the lines of sales invoices posted
	// within the period.
	GetPostedSalesLines(ctx context.Context, from, to time.Time) ([]pricing.LineInput, error)

	// GetSupplierPurchases returns posted purchase lines grouped by
	// supplier.
	GetSupplierPurchases(ctx context.Context, filter ProfitFilter) ([]SupplierPurchases, error)

	// GetDailySales returns per-day aggregates of posted sales invoices.
	GetDailySales(ctx context.Context, from, to time.Time) ([]DailySalesRow, error)
}
