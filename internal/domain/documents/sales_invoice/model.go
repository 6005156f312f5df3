// Package sales_invoice provides the SalesInvoice document.
package sales_invoice

import (
	"context"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/id"
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/posting"
	"pharmabill/internal/domain/pricing"
	"pharmabill/internal/domain/registers/stock"
)

// SalesInvoice records a counter sale. Customer can be a registered
// party (CustomerID) or a walk-in identified only by name.
type SalesInvoice struct {
	entity.Document

	// Customer reference. Nil ID means walk-in.
	CustomerID   *id.ID `db:"customer_id" json:"customerId,omitempty"`
	CustomerName string `db:"customer_name" json:"customerName,omitempty"`

	// Prescribing doctor, free text.
	DoctorName string `db:"doctor_name" json:"doctorName,omitempty"`

	// Settlement mode trait
	entity.PaymentAware

	// Totals snapshot (recalculated from lines on every save)
	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`
	TaxableTotal  types.Money    `db:"taxable_total" json:"taxableTotal"`
	CGSTTotal     types.Money    `db:"cgst_total" json:"cgstTotal"`
	SGSTTotal     types.Money    `db:"sgst_total" json:"sgstTotal"`
	RawTotal      types.Money    `db:"raw_total" json:"rawTotal"`
	RoundOff      types.Money    `db:"round_off" json:"roundOff"`
	GrandTotal    types.Money    `db:"grand_total" json:"grandTotal"`

	// Table part: sold items
	Lines []SalesInvoiceLine `db:"-" json:"lines"`
}

// SalesInvoiceLine is one sold item. Input fields come from the caller;
// derived fields are overwritten by Recalculate and never trusted.
type SalesInvoiceLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemCode string `db:"item_code" json:"itemCode"`
	ItemName string `db:"item_name" json:"itemName"`
	Batch    string `db:"batch" json:"batch,omitempty"`
	HSNCode  string `db:"hsn_code" json:"hsnCode,omitempty"`

	Quantity        types.Quantity `db:"quantity" json:"quantity"`
	Rate            types.Money    `db:"rate" json:"rate"`
	MRP             types.Money    `db:"mrp" json:"mrp"`
	DiscountPercent types.Money    `db:"discount_percent" json:"discountPercent"`
	CGSTPercent     types.Money    `db:"cgst_percent" json:"cgstPercent"`
	SGSTPercent     types.Money    `db:"sgst_percent" json:"sgstPercent"`

	// Derived
	Gross          types.Money `db:"gross" json:"gross"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	Taxable        types.Money `db:"taxable" json:"taxable"`
	CGSTAmount     types.Money `db:"cgst_amount" json:"cgstAmount"`
	SGSTAmount     types.Money `db:"sgst_amount" json:"sgstAmount"`
	Total          types.Money `db:"total" json:"total"`
}

// PricingInput maps the line to the pricing engine's input.
func (l SalesInvoiceLine) PricingInput() pricing.LineInput {
	return pricing.LineInput{
		ItemCode:        l.ItemCode,
		ItemName:        l.ItemName,
		Batch:           l.Batch,
		Quantity:        l.Quantity,
		Rate:            l.Rate,
		MRP:             l.MRP,
		DiscountPercent: l.DiscountPercent,
		CGSTPercent:     l.CGSTPercent,
		SGSTPercent:     l.SGSTPercent,
	}
}

func (l *SalesInvoiceLine) applyPricing(p pricing.PricedLine) {
	// Clamped inputs are written back so stored rows match what was billed.
	l.Quantity = p.Quantity
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

// NewSalesInvoice creates a sales invoice for a walk-in customer.
func NewSalesInvoice(customerName string) *SalesInvoice {
	return &SalesInvoice{
		Document:     entity.NewDocument(),
		CustomerName: customerName,
		Lines:        make([]SalesInvoiceLine, 0),
	}
}

// AddLine appends a line and recalculates the invoice.
func (s *SalesInvoice) AddLine(in pricing.LineInput, hsnCode string) {
	s.Lines = append(s.Lines, SalesInvoiceLine{
		LineID:          id.New(),
		LineNo:          len(s.Lines) + 1,
		ItemCode:        in.ItemCode,
		ItemName:        in.ItemName,
		Batch:           in.Batch,
		HSNCode:         hsnCode,
		Quantity:        in.Quantity,
		Rate:            in.Rate,
		MRP:             in.MRP,
		DiscountPercent: in.DiscountPercent,
		CGSTPercent:     in.CGSTPercent,
		SGSTPercent:     in.SGSTPercent,
	})
	s.Recalculate()
}

// Recalculate reprices every line and rebuilds the totals snapshot.
// Called on every save path so derived amounts are never caller-supplied.
func (s *SalesInvoice) Recalculate() {
	inputs := make([]pricing.LineInput, len(s.Lines))
	for i, line := range s.Lines {
		inputs[i] = line.PricingInput()
	}

	priced, totals := pricing.Price(inputs)
	for i := range s.Lines {
		s.Lines[i].applyPricing(priced[i])
		s.Lines[i].LineNo = i + 1
	}

	s.TotalQuantity = totals.TotalQuantity
	s.TaxableTotal = totals.TaxableTotal
	s.CGSTTotal = totals.CGSTTotal
	s.SGSTTotal = totals.SGSTTotal
	s.RawTotal = totals.RawTotal
	s.RoundOff = totals.RoundOff
	s.GrandTotal = totals.GrandTotal
}

// BillableLines returns the lines that contribute to totals and stock.
func (s *SalesInvoice) BillableLines() []SalesInvoiceLine {
	out := make([]SalesInvoiceLine, 0, len(s.Lines))
	for _, line := range s.Lines {
		if pricing.Billable(line.PricingInput()) {
			out = append(out, line)
		}
	}
	return out
}

// Validate implements entity.Validatable.
func (s *SalesInvoice) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	if err := s.ValidatePayment(ctx); err != nil {
		return err
	}

	if s.CustomerID == nil && s.CustomerName == "" {
		return apperror.NewValidation("customer reference or name is required").
			WithDetail("field", "customerName")
	}

	if len(s.BillableLines()) == 0 {
		return apperror.NewValidation("at least one billable line is required").
			WithDetail("field", "lines")
	}

	return nil
}

// --- Postable interface implementation ---
// GetID, GetDate, GetPostedVersion, IsPosted, CanPost, MarkPosted,
// MarkUnposted are inherited from entity.Document.

func (s *SalesInvoice) GetDocumentType() string { return "SalesInvoice" }

// GenerateDeltas reconciles billable lines into negative stock deltas.
func (s *SalesInvoice) GenerateDeltas(ctx context.Context, lookup stock.Lookup) ([]stock.Delta, error) {
	inputs := make([]pricing.LineInput, 0, len(s.Lines))
	for _, line := range s.Lines {
		inputs = append(inputs, line.PricingInput())
	}
	return stock.ReconcileSale(inputs, lookup), nil
}

// CustomerRef returns the customer ID as a string, empty for walk-ins.
func (s *SalesInvoice) CustomerRef() string {
	if s.CustomerID == nil {
		return ""
	}
	return s.CustomerID.String()
}

var _ posting.Postable = (*SalesInvoice)(nil)
var _ entity.Validatable = (*SalesInvoice)(nil)
