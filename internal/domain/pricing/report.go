package pricing

import (
	"pharmabill/internal/core/types"
)

// RateBucket aggregates taxable value and split tax amounts for one
// combined GST rate. Used by the GST summary report.
type RateBucket struct {
	Taxable types.Money `json:"taxable"`
	CGST    types.Money `json:"cgst"`
	SGST    types.Money `json:"sgst"`
}

// GSTBreakdown buckets billable lines by combined GST rate (CGST + SGST).
// Keys are the combined percentage rendered as a decimal string ("5", "12").
func GSTBreakdown(lines []LineInput) map[string]RateBucket {
	buckets := make(map[string]RateBucket)

	for _, in := range lines {
		if !Billable(in) {
			continue
		}
		l := ComputeLine(in)

		key := l.CGSTPercent.Add(l.SGSTPercent).String()
		b := buckets[key]
		b.Taxable = b.Taxable.Add(l.Taxable)
		b.CGST = b.CGST.Add(l.CGSTAmount)
		b.SGST = b.SGST.Add(l.SGSTAmount)
		buckets[key] = b
	}

	return buckets
}

// PotentialProfit is the purchase-side margin estimate:
// sum of quantity * max(0, MRP - rate) over billable lines.
func PotentialProfit(lines []LineInput) types.Money {
	profit := types.Zero()
	for _, in := range lines {
		if !Billable(in) {
			continue
		}
		l := ComputeLine(in)
		margin := l.MRP.Sub(l.Rate)
		if margin.IsNegative() {
			continue
		}
		profit = profit.Add(types.RoundPaise(margin.Mul(l.Quantity.Money())))
	}
	return profit
}

// ProfitMarginPercent relates potential profit to the total MRP value of
// the billable lines. Returns 0 when there is no MRP value to relate to.
func ProfitMarginPercent(lines []LineInput) types.Money {
	mrpValue := types.Zero()
	for _, in := range lines {
		if !Billable(in) {
			continue
		}
		l := ComputeLine(in)
		mrpValue = mrpValue.Add(l.MRP.Mul(l.Quantity.Money()))
	}
	if mrpValue.IsZero() {
		return types.Zero()
	}
	return types.RoundPaise(PotentialProfit(lines).Div(mrpValue).Mul(types.NewMoney(100)))
}
