package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/pricing"
	"pharmabill/internal/domain/registers/stock"
)

// DefaultExpiryWindowDays is the lookahead when the caller gives none.
const DefaultExpiryWindowDays = 90

// Service provides report generation operations.
type Service struct {
	repo     Repository
	stockSvc *stock.Service
}

// NewService creates a new reports service.
func NewService(repo Repository, stockSvc *stock.Service) *Service {
	return &Service{repo: repo, stockSvc: stockSvc}
}

// GSTSummary buckets the period's posted sales lines by combined GST rate.
func (s *Service) GSTSummary(ctx context.Context, filter GSTSummaryFilter) (*GSTSummaryReport, error) {
	if err := validatePeriod(filter.FromDate, filter.ToDate); err != nil {
		return nil, err
	}

	lines, err := s.repo.GetPostedSalesLines(ctx, filter.FromDate, filter.ToDate)
	if err != nil {
		return nil, fmt.Errorf("get posted sales lines: %w", err)
	}

	report := &GSTSummaryReport{
		FromDate:     filter.FromDate,
		ToDate:       filter.ToDate,
		TotalTaxable: types.Zero(),
		TotalCGST:    types.Zero(),
		TotalSGST:    types.Zero(),
		TotalTax:     types.Zero(),
	}

	for rate, bucket := range pricing.GSTBreakdown(lines) {
		report.Rows = append(report.Rows, GSTSummaryRow{
			Rate:    rate,
			Taxable: bucket.Taxable,
			CGST:    bucket.CGST,
			SGST:    bucket.SGST,
		})
		report.TotalTaxable = report.TotalTaxable.Add(bucket.Taxable)
		report.TotalCGST = report.TotalCGST.Add(bucket.CGST)
		report.TotalSGST = report.TotalSGST.Add(bucket.SGST)
	}
	report.TotalTax = report.TotalCGST.Add(report.TotalSGST)

	// ascending by numeric rate, stable for the tax return layout
	sort.Slice(report.Rows, func(i, j int) bool {
		a, errA := types.NewMoneyFromString(report.Rows[i].Rate)
		b, errB := types.NewMoneyFromString(report.Rows[j].Rate)
		if errA != nil || errB != nil {
			return report.Rows[i].Rate < report.Rows[j].Rate
		}
		return a.LessThan(b)
	})

	return report, nil
}

// ProfitAnalysis derives potential profit and margin per supplier from
// posted purchase lines, plus the overall figures.
func (s *Service) ProfitAnalysis(ctx context.Context, filter ProfitFilter) (*ProfitReport, error) {
	if filter.FromDate != nil && filter.ToDate != nil && filter.FromDate.After(*filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}

	groups, err := s.repo.GetSupplierPurchases(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get supplier purchases: %w", err)
	}

	report := &ProfitReport{
		TotalPurchaseValue:   types.Zero(),
		TotalPotentialProfit: types.Zero(),
		OverallMarginPercent: types.Zero(),
	}

	var all []pricing.LineInput
	for _, g := range groups {
		value := purchaseValue(g.Lines)
		report.Rows = append(report.Rows, ProfitRow{
			SupplierID:      g.SupplierID,
			SupplierName:    g.SupplierName,
			InvoiceCount:    g.InvoiceCount,
			PurchaseValue:   value,
			PotentialProfit: pricing.PotentialProfit(g.Lines),
			MarginPercent:   pricing.ProfitMarginPercent(g.Lines),
		})
		report.TotalPurchaseValue = report.TotalPurchaseValue.Add(value)
		all = append(all, g.Lines...)
	}

	report.TotalPotentialProfit = pricing.PotentialProfit(all)
	report.OverallMarginPercent = pricing.ProfitMarginPercent(all)

	// biggest profit opportunity first
	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[j].PotentialProfit.LessThan(report.Rows[i].PotentialProfit)
	})

	return report, nil
}

// LowStock lists balances at or below their reorder level.
func (s *Service) LowStock(ctx context.Context) (*LowStockReport, error) {
	records, err := s.stockSvc.BelowReorder(ctx)
	if err != nil {
		return nil, fmt.Errorf("get below-reorder records: %w", err)
	}

	report := &LowStockReport{TotalItems: len(records)}
	for _, r := range records {
		report.Rows = append(report.Rows, LowStockRow{
			ItemCode:     r.ItemCode,
			ItemName:     r.ItemName,
			Batch:        r.Batch,
			Quantity:     r.Quantity,
			ReorderLevel: types.Quantity(r.ReorderLevel),
			Supplier:     r.Supplier,
		})
	}
	return report, nil
}

// Expiry lists batches expiring within the window, soonest first, with
// the retail value at risk.
func (s *Service) Expiry(ctx context.Context, filter ExpiryFilter) (*ExpiryReport, error) {
	days := filter.WithinDays
	if days <= 0 {
		days = DefaultExpiryWindowDays
	}

	records, err := s.stockSvc.Expiring(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("get expiring records: %w", err)
	}

	now := time.Now().UTC()
	report := &ExpiryReport{
		WithinDays:    days,
		TotalItems:    len(records),
		TotalMRPValue: types.Zero(),
	}
	for _, r := range records {
		if r.ExpiryDate == nil {
			continue
		}
		value := types.RoundPaise(r.MRP.Mul(r.Quantity.Money()))
		report.Rows = append(report.Rows, ExpiryRow{
			ItemCode:   r.ItemCode,
			ItemName:   r.ItemName,
			Batch:      r.Batch,
			Quantity:   r.Quantity,
			ExpiryDate: *r.ExpiryDate,
			DaysLeft:   int(r.ExpiryDate.Sub(now).Hours() / 24),
			MRPValue:   value,
		})
		report.TotalMRPValue = report.TotalMRPValue.Add(value)
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].ExpiryDate.Before(report.Rows[j].ExpiryDate)
	})
	report.TotalItems = len(report.Rows)

	return report, nil
}

// DailySales returns the per-day sales summary for a period.
func (s *Service) DailySales(ctx context.Context, filter DailySalesFilter) (*DailySalesReport, error) {
	if err := validatePeriod(filter.FromDate, filter.ToDate); err != nil {
		return nil, err
	}

	rows, err := s.repo.GetDailySales(ctx, filter.FromDate, filter.ToDate)
	if err != nil {
		return nil, fmt.Errorf("get daily sales: %w", err)
	}

	report := &DailySalesReport{
		FromDate:        filter.FromDate,
		ToDate:          filter.ToDate,
		Rows:            rows,
		TotalTaxable:    types.Zero(),
		TotalTax:        types.Zero(),
		TotalGrandTotal: types.Zero(),
	}
	for _, r := range rows {
		report.TotalInvoices += r.InvoiceCount
		report.TotalTaxable = report.TotalTaxable.Add(r.Taxable)
		report.TotalTax = report.TotalTax.Add(r.Tax)
		report.TotalGrandTotal = report.TotalGrandTotal.Add(r.GrandTotal)
	}

	return report, nil
}

// purchaseValue is the gross purchase cost of the billable lines.
func purchaseValue(lines []pricing.LineInput) types.Money {
	value := types.Zero()
	for _, in := range lines {
		if !pricing.Billable(in) {
			continue
		}
		value = value.Add(pricing.ComputeLine(in).Gross)
	}
	return value
}

func validatePeriod(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("fromDate and toDate are required")
	}
	if from.After(to) {
		return fmt.Errorf("fromDate must be before toDate")
	}
	return nil
}
