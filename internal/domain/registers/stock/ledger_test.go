package stock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/pricing"
)

func saleLine(code, batch string, qty int64) pricing.LineInput {
	return pricing.LineInput{
		ItemCode: code,
		ItemName: "Item " + code,
		Batch:    batch,
		Quantity: types.Quantity(qty),
		Rate:     types.NewMoney(10),
	}
}

func purchaseLine(code, name, batch string, qty, free int64) PurchaseLine {
	return PurchaseLine{
		LineInput: pricing.LineInput{
			ItemCode:     code,
			ItemName:     name,
			Batch:        batch,
			Quantity:     types.Quantity(qty),
			FreeQuantity: types.Quantity(free),
			Rate:         types.NewMoney(40),
			MRP:          types.NewMoney(50),
			CGSTPercent:  types.NewMoney(6),
			SGSTPercent:  types.NewMoney(6),
		},
		HSNCode:      "3004",
		Manufacturer: "Cipla",
		PackSize:     "10x10",
	}
}

func lookupWith(records ...entity.StockRecord) Lookup {
	return LookupFunc(func(itemCode, batch string) (entity.StockRecord, bool) {
		for _, r := range records {
			if r.ItemCode == itemCode && r.Batch == batch {
				return r, true
			}
		}
		return entity.StockRecord{}, false
	})
}

func TestReconcileSale_SignAndResolution(t *testing.T) {
	lookup := lookupWith(entity.StockRecord{ItemCode: "A1", Batch: "B1", ItemName: "Item A1", Quantity: 100})

	deltas := ReconcileSale([]pricing.LineInput{
		saleLine("A1", "B1", 5),
		saleLine("ZZ", "B9", 3),
	}, lookup)

	require.Len(t, deltas, 2)

	assert.Equal(t, types.Quantity(-5), deltas[0].QuantityChange)
	assert.False(t, deltas[0].Unresolved)
	assert.Equal(t, 1, deltas[0].LineNo)

	assert.Equal(t, types.Quantity(-3), deltas[1].QuantityChange)
	assert.True(t, deltas[1].Unresolved, "missing key is emitted, flagged unresolved")

	for _, d := range deltas {
		assert.True(t, d.QuantityChange <= 0, "sales deltas are never positive")
	}
}

func TestReconcileSale_SkipsPlaceholders(t *testing.T) {
	deltas := ReconcileSale([]pricing.LineInput{
		saleLine("A1", "B1", 5),
		{Quantity: 4},                // no identifier
		saleLine("A2", "B2", 0),      // zero quantity
	}, lookupWith())

	require.Len(t, deltas, 1)
	assert.Equal(t, "A1", deltas[0].ItemCode)
}

func TestReconcilePurchase_CreateWhenNotFound(t *testing.T) {
	deltas := ReconcilePurchase([]PurchaseLine{
		purchaseLine("A1", "Dolo 650", "B1", 10, 2),
	}, lookupWith())

	require.Len(t, deltas, 1)
	d := deltas[0]

	assert.Equal(t, types.Quantity(12), d.QuantityChange, "free quantity arrives too")
	assert.Equal(t, MergeCreate, d.MergePolicy)
	assert.Equal(t, "Dolo 650", d.Descriptive.ItemName)
	assert.Equal(t, "3004", d.Descriptive.HSNCode)
	assert.Equal(t, "40", d.Descriptive.PurchasePrice.String())
}

func TestReconcilePurchase_IncrementOnCaseInsensitiveNameMatch(t *testing.T) {
	lookup := lookupWith(entity.StockRecord{ItemCode: "A1", Batch: "B1", ItemName: "DOLO 650", Quantity: 30})

	deltas := ReconcilePurchase([]PurchaseLine{
		purchaseLine("A1", "dolo 650", "B1", 10, 0),
	}, lookup)

	require.Len(t, deltas, 1)
	assert.Equal(t, MergeIncrement, deltas[0].MergePolicy)
	assert.Equal(t, types.Quantity(10), deltas[0].QuantityChange)
}

func TestReconcilePurchase_NameMismatchCreates(t *testing.T) {
	// Same key but a different product name: refuse to merge silently.
	lookup := lookupWith(entity.StockRecord{ItemCode: "A1", Batch: "B1", ItemName: "Crocin Advance"})

	deltas := ReconcilePurchase([]PurchaseLine{
		purchaseLine("A1", "Dolo 650", "B1", 10, 0),
	}, lookup)

	require.Len(t, deltas, 1)
	assert.Equal(t, MergeCreate, deltas[0].MergePolicy)
}

func TestReconcilePurchase_NonNegativeChange(t *testing.T) {
	expiry := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	line := purchaseLine("A1", "Dolo 650", "B1", 7, 3)
	line.ExpiryDate = &expiry

	deltas := ReconcilePurchase([]PurchaseLine{line}, lookupWith())

	require.Len(t, deltas, 1)
	assert.True(t, deltas[0].QuantityChange >= 0)
	require.NotNil(t, deltas[0].Descriptive.ExpiryDate)
	assert.Equal(t, expiry, *deltas[0].Descriptive.ExpiryDate)
}
