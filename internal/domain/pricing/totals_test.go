package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmabill/internal/core/types"
)

func TestComputeTotals_Empty(t *testing.T) {
	totals := ComputeTotals(nil)

	assert.Equal(t, types.Quantity(0), totals.TotalQuantity)
	assert.True(t, totals.TaxableTotal.IsZero())
	assert.True(t, totals.TotalTax.IsZero())
	assert.True(t, totals.RawTotal.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
	assert.True(t, totals.RoundOff.IsZero())
}

func TestComputeTotals_RoundingLaw(t *testing.T) {
	// Line totals 100.40 and 25.15 -> raw 125.55, grand 126, round-off 0.45.
	lines := []LineInput{
		line(1, 100.40, 0, 0, 0),
		line(1, 25.15, 0, 0, 0),
	}

	totals := ComputeTotals(lines)

	assert.Equal(t, "125.55", totals.RawTotal.String())
	assert.Equal(t, "126", totals.GrandTotal.String())
	assert.Equal(t, "0.45", totals.RoundOff.String())

	// Grand total is always a whole rupee; round-off bounded by 0.5.
	assert.True(t, totals.GrandTotal.Equal(totals.GrandTotal.Round(0)))
	assert.True(t, totals.RoundOff.Abs().LessThanOrEqual(types.NewMoney(0.5)))
}

func TestComputeTotals_RawEqualsTaxablePlusTax(t *testing.T) {
	lines := []LineInput{
		line(3, 33.33, 10, 2.5, 2.5),
		line(7, 123.45, 5, 6, 6),
		line(2, 18.20, 0, 9, 9),
	}

	totals := ComputeTotals(lines)

	require.True(t, totals.TotalTax.Equal(totals.CGSTTotal.Add(totals.SGSTTotal)))
	assert.True(t, totals.RawTotal.Equal(totals.TaxableTotal.Add(totals.TotalTax)),
		"rawTotal must equal taxableTotal + totalTax exactly")
}

func TestComputeTotals_Additivity(t *testing.T) {
	l1 := line(3, 33.33, 10, 2.5, 2.5)
	l2 := line(7, 123.45, 5, 6, 6)

	combined := ComputeTotals([]LineInput{l1, l2})
	first := ComputeTotals([]LineInput{l1})
	second := ComputeTotals([]LineInput{l2})

	assert.True(t, combined.TaxableTotal.Equal(first.TaxableTotal.Add(second.TaxableTotal)))
	assert.True(t, combined.CGSTTotal.Equal(first.CGSTTotal.Add(second.CGSTTotal)))
	assert.True(t, combined.SGSTTotal.Equal(first.SGSTTotal.Add(second.SGSTTotal)))
	assert.True(t, combined.RawTotal.Equal(first.RawTotal.Add(second.RawTotal)))
}

func TestComputeTotals_SkipsPlaceholderRows(t *testing.T) {
	lines := []LineInput{
		line(10, 50, 0, 6, 6),
		{Quantity: 5, Rate: types.NewMoney(100)},       // no identifier
		{ItemName: "Crocin", Rate: types.NewMoney(30)}, // zero quantity
	}

	totals := ComputeTotals(lines)

	assert.Equal(t, types.Quantity(10), totals.TotalQuantity)
	assert.Equal(t, "560", totals.RawTotal.String())
}

func TestPrice_PricesEveryRow(t *testing.T) {
	lines := []LineInput{
		line(10, 50, 0, 6, 6),
		{ItemName: "placeholder"},
	}

	priced, totals := Price(lines)

	require.Len(t, priced, 2)
	assert.Equal(t, "560", priced[0].Total.String())
	assert.True(t, priced[1].Total.IsZero())
	assert.Equal(t, "560", totals.GrandTotal.String())
}

func TestGSTBreakdown(t *testing.T) {
	lines := []LineInput{
		line(10, 50, 0, 6, 6),     // 12% slab: taxable 500, cgst 30, sgst 30
		line(4, 25, 0, 6, 6),      // 12% slab: taxable 100, cgst 6, sgst 6
		line(2, 100, 0, 2.5, 2.5), // 5% slab: taxable 200, cgst 5, sgst 5
		{ItemName: "placeholder"},
	}

	buckets := GSTBreakdown(lines)

	require.Len(t, buckets, 2)
	assert.Equal(t, "600", buckets["12"].Taxable.String())
	assert.Equal(t, "36", buckets["12"].CGST.String())
	assert.Equal(t, "36", buckets["12"].SGST.String())
	assert.Equal(t, "200", buckets["5"].Taxable.String())
	assert.Equal(t, "5", buckets["5"].CGST.String())
}

func TestProfitMetrics(t *testing.T) {
	withMRP := func(qty int64, rate, mrp float64) LineInput {
		l := line(qty, rate, 0, 6, 6)
		l.MRP = types.NewMoney(mrp)
		return l
	}

	lines := []LineInput{
		withMRP(10, 40, 50), // margin 10 * 10 = 100
		withMRP(5, 60, 50),  // negative margin ignored
	}

	profit := PotentialProfit(lines)
	assert.Equal(t, "100", profit.String())

	// MRP value = 10*50 + 5*50 = 750; 100/750*100 = 13.33
	margin := ProfitMarginPercent(lines)
	assert.Equal(t, "13.33", margin.String())

	assert.True(t, ProfitMarginPercent(nil).IsZero())
}
