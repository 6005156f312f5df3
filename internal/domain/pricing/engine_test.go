package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmabill/internal/core/types"
)

func line(qty int64, rate, discount, cgst, sgst float64) LineInput {
	return LineInput{
		ItemCode:        "PARA500",
		ItemName:        "Paracetamol 500mg",
		Batch:           "B001",
		Quantity:        types.Quantity(qty),
		Rate:            types.NewMoney(rate),
		DiscountPercent: types.NewMoney(discount),
		CGSTPercent:     types.NewMoney(cgst),
		SGSTPercent:     types.NewMoney(sgst),
	}
}

func TestComputeLine_NoDiscount(t *testing.T) {
	l := ComputeLine(line(10, 50, 0, 6, 6))

	assert.Equal(t, "500", l.Gross.String())
	assert.Equal(t, "0", l.DiscountAmount.String())
	assert.Equal(t, "500", l.Taxable.String())
	assert.Equal(t, "30", l.CGSTAmount.String())
	assert.Equal(t, "30", l.SGSTAmount.String())
	assert.Equal(t, "560", l.Total.String())
}

func TestComputeLine_DiscountAndRounding(t *testing.T) {
	// 3 * 33.33 = 99.99; 10% discount = 9.999 -> 10.00 at the rounding point
	l := ComputeLine(line(3, 33.33, 10, 2.5, 2.5))

	assert.Equal(t, "99.99", l.Gross.String())
	assert.Equal(t, "10", l.DiscountAmount.String())
	assert.Equal(t, "89.99", l.Taxable.String())
	assert.Equal(t, "2.25", l.CGSTAmount.String())
	assert.Equal(t, "2.25", l.SGSTAmount.String())
	assert.Equal(t, "94.49", l.Total.String())
}

func TestComputeLine_Deterministic(t *testing.T) {
	in := line(7, 123.45, 12.5, 9, 9)

	first := ComputeLine(in)
	second := ComputeLine(in)

	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.Taxable.Equal(second.Taxable))
	assert.True(t, first.CGSTAmount.Equal(second.CGSTAmount))
	assert.True(t, first.SGSTAmount.Equal(second.SGSTAmount))
}

func TestComputeLine_ClampsInvalidInput(t *testing.T) {
	in := line(5, 10, 0, 2.5, 2.5)
	in.Quantity = -3
	in.Rate = types.NewMoney(-10)
	in.DiscountPercent = types.NewMoney(250)

	l := ComputeLine(in)

	assert.Equal(t, types.Quantity(0), l.Quantity)
	assert.True(t, l.Rate.IsZero())
	assert.Equal(t, "100", l.DiscountPercent.String())
	assert.True(t, l.Total.IsZero())
}

func TestComputeLine_ZeroQuantityNeutral(t *testing.T) {
	l := ComputeLine(line(0, 999.99, 50, 14, 14))

	assert.True(t, l.Gross.IsZero())
	assert.True(t, l.Taxable.IsZero())
	assert.True(t, l.CGSTAmount.IsZero())
	assert.True(t, l.SGSTAmount.IsZero())
	assert.True(t, l.Total.IsZero())
}

func TestComputeLine_TaxNonNegative(t *testing.T) {
	cases := []LineInput{
		line(1, 0.01, 100, 2.5, 2.5),
		line(1000, 0.05, 99.99, 14, 14),
		line(3, 33.33, 0, 0, 0),
	}
	for _, in := range cases {
		l := ComputeLine(in)
		assert.False(t, l.CGSTAmount.IsNegative())
		assert.False(t, l.SGSTAmount.IsNegative())
		assert.True(t, l.Taxable.LessThanOrEqual(l.Gross))
	}
}

func TestBillable(t *testing.T) {
	assert.True(t, Billable(line(1, 10, 0, 0, 0)))

	empty := LineInput{Quantity: 5}
	assert.False(t, Billable(empty), "no item identifier")

	named := LineInput{ItemName: "Crocin"}
	assert.False(t, Billable(named), "zero quantity")

	named.Quantity = 2
	assert.True(t, Billable(named))

	blank := LineInput{ItemName: "   ", ItemCode: "", Quantity: 2}
	assert.False(t, Billable(blank), "whitespace identifier")
}

func TestApplyEdit(t *testing.T) {
	in := line(10, 50, 0, 6, 6)

	l := ApplyEdit(in, SetQuantity{Value: 4})
	require.Equal(t, types.Quantity(4), l.Quantity)
	assert.Equal(t, "224", l.Total.String())

	l = ApplyEdit(l.LineInput, SetDiscountPercent{Value: types.NewMoney(10)})
	assert.Equal(t, "20", l.DiscountAmount.String())
	assert.Equal(t, "180", l.Taxable.String())

	l = ApplyEdit(l.LineInput, SetQuantity{Value: -1})
	assert.Equal(t, types.Quantity(0), l.Quantity, "negative edit clamps to zero")
	assert.True(t, l.Total.IsZero())

	l = ApplyEdit(l.LineInput, SetDescriptive{ItemCode: "DOLO650", ItemName: "Dolo 650", Batch: "X9"})
	assert.Equal(t, "DOLO650", l.ItemCode)
	assert.Equal(t, "X9", l.Batch)
}
