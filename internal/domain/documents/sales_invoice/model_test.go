package sales_invoice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/pricing"
	"pharmabill/internal/domain/registers/stock"
)

func saleLine(code, name string, qty int64, rate, cgst, sgst float64) pricing.LineInput {
	return pricing.LineInput{
		ItemCode:    code,
		ItemName:    name,
		Batch:       "B001",
		Quantity:    types.Quantity(qty),
		Rate:        types.NewMoney(rate),
		CGSTPercent: types.NewMoney(cgst),
		SGSTPercent: types.NewMoney(sgst),
	}
}

func TestSalesInvoice_AddLineRecalculates(t *testing.T) {
	inv := NewSalesInvoice("Walk-in")
	inv.AddLine(saleLine("PARA500", "Paracetamol 500mg", 10, 50, 6, 6), "3004")

	require.Len(t, inv.Lines, 1)
	assert.Equal(t, "560", inv.Lines[0].Total.String())
	assert.Equal(t, "560", inv.GrandTotal.String())
	assert.Equal(t, types.Quantity(10), inv.TotalQuantity)
}

func TestSalesInvoice_GrandTotalRoundsToRupee(t *testing.T) {
	inv := NewSalesInvoice("Walk-in")
	inv.AddLine(saleLine("A", "Amoxicillin", 1, 100.40, 0, 0), "")
	inv.AddLine(saleLine("B", "Benadryl", 1, 25.15, 0, 0), "")

	assert.Equal(t, "125.55", inv.RawTotal.String())
	assert.Equal(t, "126", inv.GrandTotal.String())
	assert.Equal(t, "0.45", inv.RoundOff.String())
}

func TestSalesInvoice_PlaceholderLinesExcluded(t *testing.T) {
	inv := NewSalesInvoice("Walk-in")
	inv.AddLine(saleLine("PARA500", "Paracetamol 500mg", 2, 50, 6, 6), "")
	inv.AddLine(pricing.LineInput{}, "") // blank grid row

	assert.Len(t, inv.Lines, 2)
	assert.Len(t, inv.BillableLines(), 1)
	assert.Equal(t, types.Quantity(2), inv.TotalQuantity)
}

func TestSalesInvoice_RecalculateOverwritesTamperedTotals(t *testing.T) {
	inv := NewSalesInvoice("Walk-in")
	inv.AddLine(saleLine("PARA500", "Paracetamol 500mg", 10, 50, 6, 6), "")

	inv.GrandTotal = types.NewMoney(1)
	inv.Lines[0].Total = types.NewMoney(1)
	inv.Recalculate()

	assert.Equal(t, "560", inv.GrandTotal.String())
	assert.Equal(t, "560", inv.Lines[0].Total.String())
}

func TestSalesInvoice_ValidateRequiresCustomer(t *testing.T) {
	inv := NewSalesInvoice("")
	inv.AddLine(saleLine("PARA500", "Paracetamol 500mg", 1, 50, 0, 0), "")

	err := inv.Validate(context.Background())
	require.Error(t, err)
}

func TestSalesInvoice_ValidateRequiresBillableLine(t *testing.T) {
	inv := NewSalesInvoice("Walk-in")
	inv.AddLine(pricing.LineInput{ItemName: "note only"}, "")

	err := inv.Validate(context.Background())
	require.Error(t, err)
}

func TestSalesInvoice_ValidateDefaultsPaymentToCash(t *testing.T) {
	inv := NewSalesInvoice("Walk-in")
	inv.AddLine(saleLine("PARA500", "Paracetamol 500mg", 1, 50, 0, 0), "")

	require.NoError(t, inv.Validate(context.Background()))
	assert.Equal(t, entity.PaymentCash, inv.PaymentMode)
}

func TestSalesInvoice_GenerateDeltasNegative(t *testing.T) {
	inv := NewSalesInvoice("Walk-in")
	inv.AddLine(saleLine("PARA500", "Paracetamol 500mg", 4, 50, 6, 6), "")

	lookup := stock.LookupFunc(func(itemCode, batch string) (entity.StockRecord, bool) {
		return entity.StockRecord{ItemCode: itemCode, Batch: batch}, true
	})

	deltas, err := inv.GenerateDeltas(context.Background(), lookup)
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, types.Quantity(-4), deltas[0].QuantityChange)
	assert.False(t, deltas[0].Unresolved)
}
