package pricing

import (
	"pharmabill/internal/core/types"
)

// InvoiceTotals is the aggregate over an invoice's billable lines.
// It is derived state: always recomputed from raw line inputs, persisted
// only as a snapshot alongside the lines it was computed from.
type InvoiceTotals struct {
	TotalQuantity     types.Quantity `json:"totalQuantity"`
	TotalFreeQuantity types.Quantity `json:"totalFreeQuantity"`

	TaxableTotal types.Money `json:"taxableTotal"`
	CGSTTotal    types.Money `json:"cgstTotal"`
	SGSTTotal    types.Money `json:"sgstTotal"`
	TotalTax     types.Money `json:"totalTax"`

	// RawTotal is the sum of line totals before rounding.
	RawTotal types.Money `json:"rawTotal"`
	// GrandTotal is RawTotal rounded to a whole rupee, half away from zero.
	GrandTotal types.Money `json:"grandTotal"`
	// RoundOff = GrandTotal - RawTotal, always within (-0.5, 0.5].
	RoundOff types.Money `json:"roundOff"`
}

// ZeroTotals returns totals with every field explicitly zero.
func ZeroTotals() InvoiceTotals {
	z := types.Zero()
	return InvoiceTotals{
		TaxableTotal: z,
		CGSTTotal:    z,
		SGSTTotal:    z,
		TotalTax:     z,
		RawTotal:     z,
		GrandTotal:   z,
		RoundOff:     z,
	}
}

// ComputeTotals prices every billable line and aggregates the result.
// Non-billable placeholder rows are skipped entirely (see Billable).
// An empty or all-placeholder list yields all-zero totals.
func ComputeTotals(lines []LineInput) InvoiceTotals {
	totals := ZeroTotals()

	for _, in := range lines {
		if !Billable(in) {
			continue
		}
		l := ComputeLine(in)

		totals.TotalQuantity += l.Quantity
		totals.TotalFreeQuantity += l.FreeQuantity
		totals.TaxableTotal = totals.TaxableTotal.Add(l.Taxable)
		totals.CGSTTotal = totals.CGSTTotal.Add(l.CGSTAmount)
		totals.SGSTTotal = totals.SGSTTotal.Add(l.SGSTAmount)
		totals.RawTotal = totals.RawTotal.Add(l.Total)
	}

	totals.TotalTax = totals.CGSTTotal.Add(totals.SGSTTotal)
	totals.GrandTotal = types.RoundRupee(totals.RawTotal)
	totals.RoundOff = totals.GrandTotal.Sub(totals.RawTotal)

	return totals
}

// Price computes both per-line derived fields and invoice totals in one
// pass. Every row is priced so the caller can display it in place; only
// billable rows contribute to the totals.
func Price(lines []LineInput) ([]PricedLine, InvoiceTotals) {
	priced := make([]PricedLine, len(lines))
	for i, in := range lines {
		priced[i] = ComputeLine(in)
	}
	return priced, ComputeTotals(lines)
}
