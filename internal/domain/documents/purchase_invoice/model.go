// Package purchase_invoice provides the PurchaseInvoice document.
package purchase_invoice

import (
	"context"
	"time"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/id"
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/posting"
	"pharmabill/internal/domain/pricing"
	"pharmabill/internal/domain/registers/stock"
)

// PurchaseInvoice records goods received from a supplier. Posting it
// raises stock and refreshes batch pricing from the supplier bill.
type PurchaseInvoice struct {
	entity.Document

	// Supplier reference (registered party, required)
	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// Supplier's own bill identification
	SupplierDocNumber string     `db:"supplier_doc_number" json:"supplierDocNumber,omitempty"`
	SupplierDocDate   *time.Time `db:"supplier_doc_date" json:"supplierDocDate,omitempty"`

	// Settlement mode trait
	entity.PaymentAware

	// Totals snapshot (recalculated from lines on every save)
	TotalQuantity     types.Quantity `db:"total_quantity" json:"totalQuantity"`
	TotalFreeQuantity types.Quantity `db:"total_free_quantity" json:"totalFreeQuantity"`
	TaxableTotal      types.Money    `db:"taxable_total" json:"taxableTotal"`
	CGSTTotal         types.Money    `db:"cgst_total" json:"cgstTotal"`
	SGSTTotal         types.Money    `db:"sgst_total" json:"sgstTotal"`
	RawTotal          types.Money    `db:"raw_total" json:"rawTotal"`
	RoundOff          types.Money    `db:"round_off" json:"roundOff"`
	GrandTotal        types.Money    `db:"grand_total" json:"grandTotal"`

	// Table part: received items
	Lines []PurchaseInvoiceLine `db:"-" json:"lines"`
}

// PurchaseInvoiceLine is one received item. Beyond the priced fields it
// carries the batch descriptors that flow into the stock record.
type PurchaseInvoiceLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemCode string `db:"item_code" json:"itemCode"`
	ItemName string `db:"item_name" json:"itemName"`
	Batch    string `db:"batch" json:"batch,omitempty"`

	Quantity        types.Quantity `db:"quantity" json:"quantity"`
	FreeQuantity    types.Quantity `db:"free_quantity" json:"freeQuantity"`
	Rate            types.Money    `db:"rate" json:"rate"`
	MRP             types.Money    `db:"mrp" json:"mrp"`
	DiscountPercent types.Money    `db:"discount_percent" json:"discountPercent"`
	CGSTPercent     types.Money    `db:"cgst_percent" json:"cgstPercent"`
	SGSTPercent     types.Money    `db:"sgst_percent" json:"sgstPercent"`

	// Batch descriptors copied onto the stock record on post
	HSNCode      string     `db:"hsn_code" json:"hsnCode,omitempty"`
	Manufacturer string     `db:"manufacturer" json:"manufacturer,omitempty"`
	PackSize     string     `db:"pack_size" json:"packSize,omitempty"`
	ExpiryDate   *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`

	// Derived
	Gross          types.Money `db:"gross" json:"gross"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	Taxable        types.Money `db:"taxable" json:"taxable"`
	CGSTAmount     types.Money `db:"cgst_amount" json:"cgstAmount"`
	SGSTAmount     types.Money `db:"sgst_amount" json:"sgstAmount"`
	Total          types.Money `db:"total" json:"total"`
}

// PricingInput maps the line to the pricing engine's input.
func (l PurchaseInvoiceLine) PricingInput() pricing.LineInput {
	return pricing.LineInput{
		ItemCode:        l.ItemCode,
		ItemName:        l.ItemName,
		Batch:           l.Batch,
		Quantity:        l.Quantity,
		FreeQuantity:    l.FreeQuantity,
		Rate:            l.Rate,
		MRP:             l.MRP,
		DiscountPercent: l.DiscountPercent,
		CGSTPercent:     l.CGSTPercent,
		SGSTPercent:     l.SGSTPercent,
	}
}

// purchaseLine maps the line to the stock reconciliation input.
func (l PurchaseInvoiceLine) purchaseLine() stock.PurchaseLine {
	return stock.PurchaseLine{
		LineInput:    l.PricingInput(),
		HSNCode:      l.HSNCode,
		Manufacturer: l.Manufacturer,
		PackSize:     l.PackSize,
		ExpiryDate:   l.ExpiryDate,
	}
}

func (l *PurchaseInvoiceLine) applyPricing(p pricing.PricedLine) {
	l.Quantity = p.Quantity
	l.FreeQuantity = p.FreeQuantity
	l.Rate = p.Rate
	l.MRP = p.MRP
	l.DiscountPercent = p.DiscountPercent
	l.CGSTPercent = p.CGSTPercent
	l.SGSTPercent = p.SGSTPercent

	l.Gross = p.Gross
	l.DiscountAmount = p.DiscountAmount
	l.Taxable = p.Taxable
	l.CGSTAmount = p.CGSTAmount
	l.SGSTAmount = p.SGSTAmount
	l.Total = p.Total
}

// NewPurchaseInvoice creates a purchase invoice for a supplier.
func NewPurchaseInvoice(supplierID id.ID) *PurchaseInvoice {
	return &PurchaseInvoice{
		Document:   entity.NewDocument(),
		SupplierID: supplierID,
		Lines:      make([]PurchaseInvoiceLine, 0),
	}
}

// AddLine appends a line and recalculates the invoice.
func (p *PurchaseInvoice) AddLine(line PurchaseInvoiceLine) {
	line.LineID = id.New()
	line.LineNo = len(p.Lines) + 1
	p.Lines = append(p.Lines, line)
	p.Recalculate()
}

// Recalculate reprices every line and rebuilds the totals snapshot.
func (p *PurchaseInvoice) Recalculate() {
	inputs := make([]pricing.LineInput, len(p.Lines))
	for i, line := range p.Lines {
		inputs[i] = line.PricingInput()
	}

	priced, totals := pricing.Price(inputs)
	for i := range p.Lines {
		p.Lines[i].applyPricing(priced[i])
		p.Lines[i].LineNo = i + 1
	}

	p.TotalQuantity = totals.TotalQuantity
	p.TotalFreeQuantity = totals.TotalFreeQuantity
	p.TaxableTotal = totals.TaxableTotal
	p.CGSTTotal = totals.CGSTTotal
	p.SGSTTotal = totals.SGSTTotal
	p.RawTotal = totals.RawTotal
	p.RoundOff = totals.RoundOff
	p.GrandTotal = totals.GrandTotal
}

// BillableLines returns the lines that contribute to totals and stock.
func (p *PurchaseInvoice) BillableLines() []PurchaseInvoiceLine {
	out := make([]PurchaseInvoiceLine, 0, len(p.Lines))
	for _, line := range p.Lines {
		if pricing.Billable(line.PricingInput()) {
			out = append(out, line)
		}
	}
	return out
}

// PotentialProfit is the margin locked into this consignment: what the
// received units earn if all sell at MRP.
func (p *PurchaseInvoice) PotentialProfit() types.Money {
	inputs := make([]pricing.LineInput, 0, len(p.Lines))
	for _, line := range p.Lines {
		inputs = append(inputs, line.PricingInput())
	}
	return pricing.PotentialProfit(inputs)
}

// ProfitMarginPercent is the potential profit relative to MRP value.
func (p *PurchaseInvoice) ProfitMarginPercent() types.Money {
	inputs := make([]pricing.LineInput, 0, len(p.Lines))
	for _, line := range p.Lines {
		inputs = append(inputs, line.PricingInput())
	}
	return pricing.ProfitMarginPercent(inputs)
}

// Validate implements entity.Validatable.
func (p *PurchaseInvoice) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if err := p.ValidatePayment(ctx); err != nil {
		return err
	}

	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	if len(p.BillableLines()) == 0 {
		return apperror.NewValidation("at least one billable line is required").
			WithDetail("field", "lines")
	}

	return nil
}

// --- Postable interface implementation ---

func (p *PurchaseInvoice) GetDocumentType() string { return "PurchaseInvoice" }

// GenerateDeltas reconciles billable lines into positive stock deltas.
// Paid and free units both enter stock.
func (p *PurchaseInvoice) GenerateDeltas(ctx context.Context, lookup stock.Lookup) ([]stock.Delta, error) {
	lines := make([]stock.PurchaseLine, 0, len(p.Lines))
	for _, line := range p.Lines {
		lines = append(lines, line.purchaseLine())
	}
	return stock.ReconcilePurchase(lines, lookup), nil
}

var _ posting.Postable = (*PurchaseInvoice)(nil)
var _ entity.Validatable = (*PurchaseInvoice)(nil)
