// Package reports provides report generation services.
package reports

import (
	"time"

	"pharmabill/internal/core/id"
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/pricing"
)

// --- GST Summary ---

// GSTSummaryFilter defines the period for the GST summary report.
type GSTSummaryFilter struct {
	// Period (required)
	FromDate time.Time
	ToDate   time.Time
}

// GSTSummaryRow is one combined-rate bucket over posted sales lines.
type GSTSummaryRow struct {
	// Rate is the combined CGST+SGST percentage ("5", "12", "18").
	Rate    string      `json:"rate"`
	Taxable types.Money `json:"taxable"`
	CGST    types.Money `json:"cgst"`
	SGST    types.Money `json:"sgst"`
}

// GSTSummaryReport is the rate-bucketed GST summary for a period.
type GSTSummaryReport struct {
	FromDate time.Time       `json:"fromDate"`
	ToDate   time.Time       `json:"toDate"`
	Rows     []GSTSummaryRow `json:"rows"`

	TotalTaxable types.Money `json:"totalTaxable"`
	TotalCGST    types.Money `json:"totalCgst"`
	TotalSGST    types.Money `json:"totalSgst"`
	TotalTax     types.Money `json:"totalTax"`
}

// --- Profit Analysis ---

// ProfitFilter defines filter for the purchase-side profit report.
type ProfitFilter struct {
	// Period
	FromDate *time.Time
	ToDate   *time.Time

	// Restrict to one supplier
	SupplierID *id.ID
}

// SupplierPurchases groups the posted purchase lines of one supplier.
// The repository returns these; the service derives profit from them.
type SupplierPurchases struct {
	SupplierID   id.ID
	SupplierName string
	InvoiceCount int
	Lines        []pricing.LineInput
}

// ProfitRow is the per-supplier margin estimate.
type ProfitRow struct {
	SupplierID      id.ID       `json:"supplierId"`
	SupplierName    string      `json:"supplierName"`
	InvoiceCount    int         `json:"invoiceCount"`
	PurchaseValue   types.Money `json:"purchaseValue"`
	PotentialProfit types.Money `json:"potentialProfit"`
	MarginPercent   types.Money `json:"marginPercent"`
}

// ProfitReport is the profit analysis over posted purchases.
type ProfitReport struct {
	Rows []ProfitRow `json:"rows"`

	TotalPurchaseValue   types.Money `json:"totalPurchaseValue"`
	TotalPotentialProfit types.Money `json:"totalPotentialProfit"`
	OverallMarginPercent types.Money `json:"overallMarginPercent"`
}

// --- Low Stock ---

// LowStockRow is an (item, batch) balance at or below its reorder level.
type LowStockRow struct {
	ItemCode     string         `json:"itemCode"`
	ItemName     string         `json:"itemName"`
	Batch        string         `json:"batch"`
	Quantity     types.Quantity `json:"quantity"`
	ReorderLevel types.Quantity `json:"reorderLevel"`
	Supplier     string         `json:"supplier,omitempty"`
}

// LowStockReport lists balances needing a reorder.
type LowStockReport struct {
	Rows       []LowStockRow `json:"rows"`
	TotalItems int           `json:"totalItems"`
}

// --- Expiry ---

// ExpiryFilter defines the lookahead window for the expiry report.
type ExpiryFilter struct {
	// WithinDays <= 0 uses DefaultExpiryWindowDays.
	WithinDays int
}

// ExpiryRow is a batch expiring within the window.
type ExpiryRow struct {
	ItemCode   string         `json:"itemCode"`
	ItemName   string         `json:"itemName"`
	Batch      string         `json:"batch"`
	Quantity   types.Quantity `json:"quantity"`
	ExpiryDate time.Time      `json:"expiryDate"`
	// DaysLeft is negative for already-expired batches.
	DaysLeft int         `json:"daysLeft"`
	MRPValue types.Money `json:"mrpValue"`
}

// ExpiryReport lists batches expiring within the window, soonest first.
type ExpiryReport struct {
	WithinDays int         `json:"withinDays"`
	Rows       []ExpiryRow `json:"rows"`
	TotalItems int         `json:"totalItems"`

	// TotalMRPValue is the retail value at risk.
	TotalMRPValue types.Money `json:"totalMrpValue"`
}

// --- Daily Sales ---

// DailySalesFilter defines the period for the daily sales summary.
type DailySalesFilter struct {
	// Period (required)
	FromDate time.Time
	ToDate   time.Time
}

// DailySalesRow is the per-day aggregate of posted sales invoices.
type DailySalesRow struct {
	Date         time.Time   `json:"date"`
	InvoiceCount int         `json:"invoiceCount"`
	Taxable      types.Money `json:"taxable"`
	Tax          types.Money `json:"tax"`
	GrandTotal   types.Money `json:"grandTotal"`
}

// DailySalesReport is the daily sales summary for a period.
type DailySalesReport struct {
	FromDate time.Time       `json:"fromDate"`
	ToDate   time.Time       `json:"toDate"`
	Rows     []DailySalesRow `json:"rows"`

	TotalInvoices   int         `json:"totalInvoices"`
	TotalTaxable    types.Money `json:"totalTaxable"`
	TotalTax        types.Money `json:"totalTax"`
	TotalGrandTotal types.Money `json:"totalGrandTotal"`
}
