// Package stock provides the stock register: the pure reconciliation
// ledger that turns posted invoice lines into signed stock deltas, and the
// service that applies those deltas to (item, batch) records.
package stock

import (
	"strings"
	"time"

	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/pricing"
)

// MergePolicy decides how a purchase delta meets the inventory store.
type MergePolicy string

const (
	// MergeCreate inserts a new (item, batch) record sourced from the line.
	MergeCreate MergePolicy = "create"
	// MergeIncrement adds quantity to an existing record and overwrites
	// its descriptive field subset from the newest line.
	MergeIncrement MergePolicy = "increment"
)

// Lookup is the snapshot capability the ledger consumes. It must return
// the most recent known record for (itemCode, batch); staleness tolerance
// is the caller's concern. The ledger itself performs no I/O.
type Lookup interface {
	Lookup(itemCode, batch string) (entity.StockRecord, bool)
}

// LookupFunc adapts a plain function to the Lookup capability.
type LookupFunc func(itemCode, batch string) (entity.StockRecord, bool)

func (f LookupFunc) Lookup(itemCode, batch string) (entity.StockRecord, bool) {
	return f(itemCode, batch)
}

// Descriptive is the purchase-side field set that is authoritative on
// create and overwritten on increment. Fields outside this set (category,
// reorder level, supplier) are preserved from the existing record.
type Descriptive struct {
	ItemName      string      `json:"itemName"`
	MRP           types.Money `json:"mrp"`
	PurchasePrice types.Money `json:"purchasePrice"`
	CGSTRate      types.Money `json:"cgstRate"`
	SGSTRate      types.Money `json:"sgstRate"`
	HSNCode       string      `json:"hsnCode"`
	Manufacturer  string      `json:"manufacturer"`
	PackSize      string      `json:"packSize"`
	ExpiryDate    *time.Time  `json:"expiryDate,omitempty"`

	// Category and Supplier seed a record on create only (bulk import
	// sheets carry them; invoice lines do not). On increment they are
	// historical and never overwritten.
	Category string `json:"category,omitempty"`
	Supplier string `json:"supplier,omitempty"`
}

// Delta is the effect of one posted line on inventory, keyed by
// (ItemCode, Batch). Applying deltas is the register service's job; the
// reconcile functions are stateless transforms.
type Delta struct {
	ItemCode string `json:"itemCode"`
	Batch    string `json:"batch"`

	// QuantityChange is negative for sales (stock leaves) and positive
	// for purchases (quantity + free quantity arrives).
	QuantityChange types.Quantity `json:"quantityChange"`

	// MergePolicy is set on purchase deltas only.
	MergePolicy MergePolicy `json:"mergePolicy,omitempty"`

	// Unresolved marks a sales line whose (itemCode, batch) was not found.
	// The sale still completes for resolved lines; the caller surfaces a
	// per-line warning.
	Unresolved bool `json:"unresolved"`

	// Descriptive carries the purchase line's authoritative fields.
	Descriptive Descriptive `json:"descriptive"`

	// LineNo points back at the source line for per-line reporting.
	LineNo int `json:"lineNo"`
}

// ReconcileSale computes one expense delta per billable line. Unmatched
// keys are still emitted, flagged Unresolved. Resulting stock is allowed
// to go negative; a stock-count discrepancy must never block a sale.
func ReconcileSale(lines []pricing.LineInput, lookup Lookup) []Delta {
	deltas := make([]Delta, 0, len(lines))

	for i, line := range lines {
		if !pricing.Billable(line) {
			continue
		}

		_, found := lookup.Lookup(line.ItemCode, line.Batch)
		deltas = append(deltas, Delta{
			ItemCode:       line.ItemCode,
			Batch:          line.Batch,
			QuantityChange: line.Quantity.Neg(),
			Unresolved:     !found,
			LineNo:         i + 1,
		})
	}

	return deltas
}

// PurchaseLine is a purchase invoice line as the ledger sees it: the
// priced inputs plus the descriptive fields a purchase carries into the
// inventory record.
type PurchaseLine struct {
	pricing.LineInput

	HSNCode      string     `json:"hsnCode"`
	Manufacturer string     `json:"manufacturer"`
	PackSize     string     `json:"packSize"`
	ExpiryDate   *time.Time `json:"expiryDate,omitempty"`

	// Create-only seeds, see Descriptive.
	Category string `json:"category,omitempty"`
	Supplier string `json:"supplier,omitempty"`
}

// ReconcilePurchase computes one receipt delta per billable line, with
// quantity + free quantity arriving. The merge policy is Increment when
// the looked-up record matches the line's item name case-insensitively
// (an empty line name defers to the key match alone), else Create.
// Item-code synthesis for new records is the caller's responsibility.
func ReconcilePurchase(lines []PurchaseLine, lookup Lookup) []Delta {
	deltas := make([]Delta, 0, len(lines))

	for i, line := range lines {
		if !pricing.Billable(line.LineInput) {
			continue
		}

		policy := MergeCreate
		if existing, found := lookup.Lookup(line.ItemCode, line.Batch); found {
			if sameItem(existing.ItemName, line.ItemName) {
				policy = MergeIncrement
			}
		}

		deltas = append(deltas, Delta{
			ItemCode:       line.ItemCode,
			Batch:          line.Batch,
			QuantityChange: line.Quantity + line.FreeQuantity,
			MergePolicy:    policy,
			LineNo:         i + 1,
			Descriptive: Descriptive{
				ItemName:      line.ItemName,
				MRP:           line.MRP,
				PurchasePrice: line.Rate,
				CGSTRate:      line.CGSTPercent,
				SGSTRate:      line.SGSTPercent,
				HSNCode:       line.HSNCode,
				Manufacturer:  line.Manufacturer,
				PackSize:      line.PackSize,
				ExpiryDate:    line.ExpiryDate,
				Category:      line.Category,
				Supplier:      line.Supplier,
			},
		})
	}

	return deltas
}

// sameItem is the case-insensitive exact item-name match that guards an
// increment against a key collision pointing at a different product.
func sameItem(existing, incoming string) bool {
	incoming = strings.TrimSpace(incoming)
	if incoming == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(existing), incoming)
}
