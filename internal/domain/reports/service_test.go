package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmabill/internal/core/id"
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/pricing"
)

type fakeRepo struct {
	salesLines []pricing.LineInput
	purchases  []SupplierPurchases
	daily      []DailySalesRow
}

func (f *fakeRepo) GetPostedSalesLines(ctx context.Context, from, to time.Time) ([]pricing.LineInput, error) {
	return f.salesLines, nil
}

func (f *fakeRepo) GetSupplierPurchases(ctx context.Context, filter ProfitFilter) ([]SupplierPurchases, error) {
	return f.purchases, nil
}

func (f *fakeRepo) GetDailySales(ctx context.Context, from, to time.Time) ([]DailySalesRow, error) {
	return f.daily, nil
}

func period() (time.Time, time.Time) {
	return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
}

func line(qty int64, rate, mrp float64, cgst, sgst float64) pricing.LineInput {
	return pricing.LineInput{
		ItemCode:    "ITM-1",
		ItemName:    "Item",
		Quantity:    types.Quantity(qty),
		Rate:        types.NewMoney(rate),
		MRP:         types.NewMoney(mrp),
		CGSTPercent: types.NewMoney(cgst),
		SGSTPercent: types.NewMoney(sgst),
	}
}

func TestGSTSummary_BucketsByCombinedRate(t *testing.T) {
	repo := &fakeRepo{salesLines: []pricing.LineInput{
		line(10, 100, 120, 6, 6),  // taxable 1000, 12%
		line(5, 200, 240, 6, 6),   // taxable 1000, 12%
		line(4, 50, 60, 2.5, 2.5), // taxable 200, 5%
	}}
	svc := NewService(repo, nil)

	from, to := period()
	report, err := svc.GSTSummary(context.Background(), GSTSummaryFilter{FromDate: from, ToDate: to})
	require.NoError(t, err)

	require.Len(t, report.Rows, 2)
	// ascending by rate
	assert.Equal(t, "5", report.Rows[0].Rate)
	assert.Equal(t, "200", report.Rows[0].Taxable.String())
	assert.Equal(t, "12", report.Rows[1].Rate)
	assert.Equal(t, "2000", report.Rows[1].Taxable.String())

	assert.Equal(t, "2200", report.TotalTaxable.String())
	assert.Equal(t, "125", report.TotalCGST.String()) // 120 + 5
	assert.Equal(t, report.TotalCGST.String(), report.TotalSGST.String())
	assert.Equal(t, "250", report.TotalTax.String())
}

func TestGSTSummary_RequiresPeriod(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil)

	_, err := svc.GSTSummary(context.Background(), GSTSummaryFilter{})
	require.Error(t, err)

	from, to := period()
	_, err = svc.GSTSummary(context.Background(), GSTSummaryFilter{FromDate: to, ToDate: from})
	require.Error(t, err)
}

func TestProfitAnalysis_PerSupplierAndOverall(t *testing.T) {
	supplierA := id.New()
	supplierB := id.New()
	repo := &fakeRepo{purchases: []SupplierPurchases{
		{
			SupplierID: supplierA, SupplierName: "MedPlus", InvoiceCount: 2,
			Lines: []pricing.LineInput{line(10, 80, 100, 6, 6)}, // profit 200 on 800
		},
		{
			SupplierID: supplierB, SupplierName: "HealthCo", InvoiceCount: 1,
			Lines: []pricing.LineInput{line(10, 50, 100, 6, 6)}, // profit 500 on 500
		},
	}}
	svc := NewService(repo, nil)

	report, err := svc.ProfitAnalysis(context.Background(), ProfitFilter{})
	require.NoError(t, err)

	require.Len(t, report.Rows, 2)
	// biggest opportunity first
	assert.Equal(t, "HealthCo", report.Rows[0].SupplierName)
	assert.Equal(t, "500", report.Rows[0].PotentialProfit.String())
	assert.Equal(t, "50", report.Rows[0].MarginPercent.String())
	assert.Equal(t, "MedPlus", report.Rows[1].SupplierName)
	assert.Equal(t, "200", report.Rows[1].PotentialProfit.String())

	assert.Equal(t, "1300", report.TotalPurchaseValue.String())
	assert.Equal(t, "700", report.TotalPotentialProfit.String())
	assert.Equal(t, "35", report.OverallMarginPercent.String()) // 700 / 2000
}

func TestDailySales_SumsRows(t *testing.T) {
	from, to := period()
	repo := &fakeRepo{daily: []DailySalesRow{
		{Date: from, InvoiceCount: 3, Taxable: types.NewMoney(300), Tax: types.NewMoney(36), GrandTotal: types.NewMoney(336)},
		{Date: from.AddDate(0, 0, 1), InvoiceCount: 1, Taxable: types.NewMoney(100), Tax: types.NewMoney(12), GrandTotal: types.NewMoney(112)},
	}}
	svc := NewService(repo, nil)

	report, err := svc.DailySales(context.Background(), DailySalesFilter{FromDate: from, ToDate: to})
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalInvoices)
	assert.Equal(t, "400", report.TotalTaxable.String())
	assert.Equal(t, "48", report.TotalTax.String())
	assert.Equal(t, "448", report.TotalGrandTotal.String())
}
