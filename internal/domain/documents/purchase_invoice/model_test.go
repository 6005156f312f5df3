package purchase_invoice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/id"
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/registers/stock"
)

func purchaseLine(code, name string, qty, free int64, rate, mrp float64) PurchaseInvoiceLine {
	return PurchaseInvoiceLine{
		ItemCode:     code,
		ItemName:     name,
		Batch:        "B100",
		Quantity:     types.Quantity(qty),
		FreeQuantity: types.Quantity(free),
		Rate:         types.NewMoney(rate),
		MRP:          types.NewMoney(mrp),
	}
}

func TestPurchaseInvoice_FreeQuantityNotBilled(t *testing.T) {
	inv := NewPurchaseInvoice(id.New())
	inv.AddLine(purchaseLine("PARA500", "Paracetamol 500mg", 10, 2, 40, 50))

	// 10 paid units billed, 2 free units tracked separately
	assert.Equal(t, "400", inv.TaxableTotal.String())
	assert.Equal(t, types.Quantity(10), inv.TotalQuantity)
	assert.Equal(t, types.Quantity(2), inv.TotalFreeQuantity)
}

func TestPurchaseInvoice_GenerateDeltasIncludesFreeUnits(t *testing.T) {
	inv := NewPurchaseInvoice(id.New())
	expiry := time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)
	line := purchaseLine("PARA500", "Paracetamol 500mg", 10, 2, 40, 50)
	line.ExpiryDate = &expiry
	line.HSNCode = "3004"
	inv.AddLine(line)

	lookup := stock.LookupFunc(func(itemCode, batch string) (entity.StockRecord, bool) {
		return entity.StockRecord{}, false
	})

	deltas, err := inv.GenerateDeltas(context.Background(), lookup)
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, types.Quantity(12), deltas[0].QuantityChange)
	assert.Equal(t, stock.MergeCreate, deltas[0].MergePolicy)
	assert.Equal(t, "3004", deltas[0].Descriptive.HSNCode)
	require.NotNil(t, deltas[0].Descriptive.ExpiryDate)
	assert.True(t, expiry.Equal(*deltas[0].Descriptive.ExpiryDate))
}

func TestPurchaseInvoice_PotentialProfit(t *testing.T) {
	inv := NewPurchaseInvoice(id.New())
	inv.AddLine(purchaseLine("PARA500", "Paracetamol 500mg", 10, 0, 40, 50))

	assert.Equal(t, "100", inv.PotentialProfit().String())
	assert.Equal(t, "20", inv.ProfitMarginPercent().String())
}

func TestPurchaseInvoice_ValidateRequiresSupplier(t *testing.T) {
	inv := NewPurchaseInvoice(id.ID{})
	inv.AddLine(purchaseLine("PARA500", "Paracetamol 500mg", 1, 0, 40, 50))

	err := inv.Validate(context.Background())
	require.Error(t, err)
}

func TestPurchaseInvoice_ValidateRequiresBillableLine(t *testing.T) {
	inv := NewPurchaseInvoice(id.New())

	err := inv.Validate(context.Background())
	require.Error(t, err)
}
