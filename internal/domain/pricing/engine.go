// Package pricing provides the invoice line pricing engine.
//
// Everything here is pure computation: no I/O, no clock, no allocation of
// shared state. The engine is called on every line edit from the invoice
// entry flow, so it must be cheap and must never fail — invalid numeric
// input is degraded to zero and the computation proceeds.
//
// Derived fields (gross, taxable, tax amounts, line total) are always
// recomputed from the raw inputs. They are never patched incrementally and
// never trusted when supplied by a caller.
package pricing

import (
	"strings"

	"pharmabill/internal/core/types"
)

// LineInput holds the raw, user-entered fields of one invoice line.
// Identity is (ItemCode, Batch); Batch may be empty meaning "no batch".
type LineInput struct {
	ItemCode string `json:"itemCode"`
	ItemName string `json:"itemName"`
	Batch    string `json:"batch"`

	Quantity types.Quantity `json:"quantity"`
	// FreeQuantity is the bonus quantity on purchase invoices (scheme goods).
	// It carries no price and contributes nothing to any monetary field.
	FreeQuantity types.Quantity `json:"freeQuantity"`

	Rate            types.Money `json:"rate"`
	MRP             types.Money `json:"mrp"`
	DiscountPercent types.Money `json:"discountPercent"`
	CGSTPercent     types.Money `json:"cgstPercent"`
	SGSTPercent     types.Money `json:"sgstPercent"`
}

// PricedLine is a LineInput with all derived monetary fields populated.
type PricedLine struct {
	LineInput

	Gross          types.Money `json:"gross"`
	DiscountAmount types.Money `json:"discountAmount"`
	Taxable        types.Money `json:"taxable"`
	CGSTAmount     types.Money `json:"cgstAmount"`
	SGSTAmount     types.Money `json:"sgstAmount"`
	Total          types.Money `json:"total"`
}

// sanitized returns a copy with every numeric field clamped into its valid
// range. Negative quantities and rates become 0, discount is capped at 100.
func (in LineInput) sanitized() LineInput {
	out := in
	if out.Quantity < 0 {
		out.Quantity = 0
	}
	if out.FreeQuantity < 0 {
		out.FreeQuantity = 0
	}
	if out.Rate.IsNegative() {
		out.Rate = types.Zero()
	}
	if out.MRP.IsNegative() {
		out.MRP = types.Zero()
	}
	if out.DiscountPercent.IsNegative() {
		out.DiscountPercent = types.Zero()
	}
	if out.DiscountPercent.GreaterThan(types.NewMoney(100)) {
		out.DiscountPercent = types.NewMoney(100)
	}
	if out.CGSTPercent.IsNegative() {
		out.CGSTPercent = types.Zero()
	}
	if out.SGSTPercent.IsNegative() {
		out.SGSTPercent = types.Zero()
	}
	return out
}

// ComputeLine derives all monetary fields for one line in fixed order:
//
//	gross    = quantity * rate
//	discount = gross * discountPercent / 100
//	taxable  = gross - discount
//	cgst     = taxable * cgstPercent / 100
//	sgst     = taxable * sgstPercent / 100
//	total    = taxable + cgst + sgst
//
// Every monetary output is rounded to paise (2 dp, half away from zero) at
// the point of computation, so per-line values and aggregated totals are
// reproducible bit-for-bit across recomputes.
func ComputeLine(in LineInput) PricedLine {
	in = in.sanitized()

	gross := types.RoundPaise(in.Rate.Mul(in.Quantity.Money()))
	discount := types.RoundPaise(types.Percent(gross, in.DiscountPercent))
	taxable := gross.Sub(discount)
	cgst := types.RoundPaise(types.Percent(taxable, in.CGSTPercent))
	sgst := types.RoundPaise(types.Percent(taxable, in.SGSTPercent))
	total := taxable.Add(cgst).Add(sgst)

	return PricedLine{
		LineInput:      in,
		Gross:          gross,
		DiscountAmount: discount,
		Taxable:        taxable,
		CGSTAmount:     cgst,
		SGSTAmount:     sgst,
		Total:          total,
	}
}

// Billable is the single placeholder-row predicate used everywhere totals
// are computed or lines are persisted: a line contributes only when it has
// a positive quantity and a non-empty item identifier (code or name).
// Placeholder rows the user tabbed through contribute exactly nothing.
func Billable(in LineInput) bool {
	if in.Quantity <= 0 {
		return false
	}
	return strings.TrimSpace(in.ItemCode) != "" || strings.TrimSpace(in.ItemName) != ""
}
