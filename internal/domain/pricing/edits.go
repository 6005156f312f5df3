package pricing

import (
	"pharmabill/internal/core/types"
)

// Edit is one strongly-typed change to a line's raw inputs. The invoice
// entry flow dispatches edits instead of mutating fields by name; every
// edit goes through ComputeLine so derived fields can never drift from
// their inputs.
type Edit interface {
	apply(LineInput) LineInput
}

// SetQuantity replaces the billed quantity.
type SetQuantity struct{ Value int64 }

// SetFreeQuantity replaces the scheme/free quantity (purchase side).
type SetFreeQuantity struct{ Value int64 }

// SetRate replaces the unit rate.
type SetRate struct{ Value types.Money }

// SetMRP replaces the maximum retail price.
type SetMRP struct{ Value types.Money }

// SetDiscountPercent replaces the line discount percentage.
type SetDiscountPercent struct{ Value types.Money }

// SetCGSTPercent replaces the CGST rate.
type SetCGSTPercent struct{ Value types.Money }

// SetSGSTPercent replaces the SGST rate.
type SetSGSTPercent struct{ Value types.Money }

// SetDescriptive replaces the identifying/descriptive fields together.
// An empty batch means "no batch".
type SetDescriptive struct {
	ItemCode string
	ItemName string
	Batch    string
}

func (e SetQuantity) apply(in LineInput) LineInput {
	in.Quantity = types.ClampQuantity(e.Value)
	return in
}

func (e SetFreeQuantity) apply(in LineInput) LineInput {
	in.FreeQuantity = types.ClampQuantity(e.Value)
	return in
}

func (e SetRate) apply(in LineInput) LineInput {
	in.Rate = e.Value
	return in
}

func (e SetMRP) apply(in LineInput) LineInput {
	in.MRP = e.Value
	return in
}

func (e SetDiscountPercent) apply(in LineInput) LineInput {
	in.DiscountPercent = e.Value
	return in
}

func (e SetCGSTPercent) apply(in LineInput) LineInput {
	in.CGSTPercent = e.Value
	return in
}

func (e SetSGSTPercent) apply(in LineInput) LineInput {
	in.SGSTPercent = e.Value
	return in
}

func (e SetDescriptive) apply(in LineInput) LineInput {
	in.ItemCode = e.ItemCode
	in.ItemName = e.ItemName
	in.Batch = e.Batch
	return in
}

// ApplyEdit applies one edit to the raw inputs and reprices the line.
func ApplyEdit(in LineInput, e Edit) PricedLine {
	return ComputeLine(e.apply(in))
}
