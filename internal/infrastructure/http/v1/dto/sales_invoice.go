package dto

import (
	"time"

	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/id"
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/documents/sales_invoice"
	"pharmabill/internal/domain/posting"
	"pharmabill/internal/domain/pricing"
)

// --- Request DTOs ---

// CreateSalesInvoiceRequest represents a request to create a sales invoice.
// Derived amounts are never accepted; the server reprices every line.
type CreateSalesInvoiceRequest struct {
	Number          string                    `json:"number,omitempty"`
	Date            *time.Time                `json:"date,omitempty"`
	CustomerID      *string                   `json:"customerId,omitempty"`
	CustomerName    string                    `json:"customerName,omitempty"`
	DoctorName      string                    `json:"doctorName,omitempty"`
	PaymentMode     string                    `json:"paymentMode,omitempty"`
	Comment         string                    `json:"comment,omitempty"`
	Lines           []SalesInvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostImmediately bool                      `json:"postImmediately,omitempty"`
}

// SalesInvoiceLineRequest represents a line in create/update requests.
// Money fields are decimal strings.
type SalesInvoiceLineRequest struct {
	ItemCode        string `json:"itemCode,omitempty"`
	ItemName        string `json:"itemName" binding:"required"`
	Batch           string `json:"batch,omitempty"`
	HSNCode         string `json:"hsnCode,omitempty"`
	Quantity        int64  `json:"quantity" binding:"required,gt=0"`
	Rate            string `json:"rate" binding:"required"`
	MRP             string `json:"mrp,omitempty"`
	DiscountPercent string `json:"discountPercent,omitempty"`
	CGSTPercent     string `json:"cgstPercent,omitempty"`
	SGSTPercent     string `json:"sgstPercent,omitempty"`
}

func (l SalesInvoiceLineRequest) pricingInput() pricing.LineInput {
	return pricing.LineInput{
		ItemCode:        l.ItemCode,
		ItemName:        l.ItemName,
		Batch:           l.Batch,
		Quantity:        types.Quantity(l.Quantity),
		Rate:            parseMoney(l.Rate),
		MRP:             parseMoney(l.MRP),
		DiscountPercent: parseMoney(l.DiscountPercent),
		CGSTPercent:     parseMoney(l.CGSTPercent),
		SGSTPercent:     parseMoney(l.SGSTPercent),
	}
}

// ToEntity converts request to domain entity.
func (r *CreateSalesInvoiceRequest) ToEntity() *sales_invoice.SalesInvoice {
	doc := sales_invoice.NewSalesInvoice(r.CustomerName)
	doc.Number = r.Number
	doc.DoctorName = r.DoctorName
	doc.Comment = r.Comment
	doc.PaymentMode = entity.PaymentMode(r.PaymentMode)

	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.CustomerID != nil {
		if parsed, err := id.Parse(*r.CustomerID); err == nil {
			doc.CustomerID = &parsed
		}
	}

	for _, line := range r.Lines {
		doc.AddLine(line.pricingInput(), line.HSNCode)
	}

	return doc
}

// UpdateSalesInvoiceRequest represents a request to update a sales invoice.
type UpdateSalesInvoiceRequest struct {
	Number       *string                   `json:"number,omitempty"`
	Date         *time.Time                `json:"date,omitempty"`
	CustomerID   *string                   `json:"customerId,omitempty"`
	CustomerName *string                   `json:"customerName,omitempty"`
	DoctorName   *string                   `json:"doctorName,omitempty"`
	PaymentMode  *string                   `json:"paymentMode,omitempty"`
	Comment      *string                   `json:"comment,omitempty"`
	Lines        []SalesInvoiceLineRequest `json:"lines,omitempty"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateSalesInvoiceRequest) ApplyTo(doc *sales_invoice.SalesInvoice) {
	if r.Number != nil {
		doc.Number = *r.Number
	}
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.CustomerID != nil {
		if parsed, err := id.Parse(*r.CustomerID); err == nil {
			doc.CustomerID = &parsed
		}
	}
	if r.CustomerName != nil {
		doc.CustomerName = *r.CustomerName
	}
	if r.DoctorName != nil {
		doc.DoctorName = *r.DoctorName
	}
	if r.PaymentMode != nil {
		doc.PaymentMode = entity.PaymentMode(*r.PaymentMode)
	}
	if r.Comment != nil {
		doc.Comment = *r.Comment
	}

	// If lines are provided, rebuild them
	if r.Lines != nil {
		doc.Lines = make([]sales_invoice.SalesInvoiceLine, 0, len(r.Lines))
		for _, line := range r.Lines {
			doc.AddLine(line.pricingInput(), line.HSNCode)
		}
	}
}

// --- Response DTOs ---

// SalesInvoiceResponse represents a sales invoice in API responses.
type SalesInvoiceResponse struct {
	ID            string     `json:"id"`
	Number        string     `json:"number"`
	Date          time.Time  `json:"date"`
	Posted        bool       `json:"posted"`
	PostedVersion int        `json:"postedVersion,omitempty"`
	CustomerID    *string    `json:"customerId,omitempty"`
	CustomerName  string     `json:"customerName,omitempty"`
	DoctorName    string     `json:"doctorName,omitempty"`
	PaymentMode   string     `json:"paymentMode"`
	Comment       string     `json:"comment,omitempty"`

	TotalQuantity int64       `json:"totalQuantity"`
	TaxableTotal  types.Money `json:"taxableTotal"`
	CGSTTotal     types.Money `json:"cgstTotal"`
	SGSTTotal     types.Money `json:"sgstTotal"`
	RawTotal      types.Money `json:"rawTotal"`
	RoundOff      types.Money `json:"roundOff"`
	GrandTotal    types.Money `json:"grandTotal"`

	Lines        []SalesInvoiceLineResponse `json:"lines,omitempty"`
	DeletionMark bool                       `json:"deletionMark,omitempty"`
	Version      int                        `json:"version"`
	CreatedAt    time.Time                  `json:"createdAt"`
	UpdatedAt    time.Time                  `json:"updatedAt"`
}

// SalesInvoiceLineResponse represents a line in API responses.
type SalesInvoiceLineResponse struct {
	LineID   string `json:"lineId"`
	LineNo   int    `json:"lineNo"`
	ItemCode string `json:"itemCode"`
	ItemName string `json:"itemName"`
	Batch    string `json:"batch,omitempty"`
	HSNCode  string `json:"hsnCode,omitempty"`

	Quantity        int64       `json:"quantity"`
	Rate            types.Money `json:"rate"`
	MRP             types.Money `json:"mrp"`
	DiscountPercent types.Money `json:"discountPercent"`
	CGSTPercent     types.Money `json:"cgstPercent"`
	SGSTPercent     types.Money `json:"sgstPercent"`

	Gross          types.Money `json:"gross"`
	DiscountAmount types.Money `json:"discountAmount"`
	Taxable        types.Money `json:"taxable"`
	CGSTAmount     types.Money `json:"cgstAmount"`
	SGSTAmount     types.Money `json:"sgstAmount"`
	Total          types.Money `json:"total"`
}

// FromSalesInvoice converts domain entity to response DTO.
func FromSalesInvoice(doc *sales_invoice.SalesInvoice) *SalesInvoiceResponse {
	resp := &SalesInvoiceResponse{
		ID:            doc.ID.String(),
		Number:        doc.Number,
		Date:          doc.Date,
		Posted:        doc.Posted,
		PostedVersion: doc.PostedVersion,
		CustomerName:  doc.CustomerName,
		DoctorName:    doc.DoctorName,
		PaymentMode:   string(doc.PaymentMode),
		Comment:       doc.Comment,
		TotalQuantity: doc.TotalQuantity.Int64(),
		TaxableTotal:  doc.TaxableTotal,
		CGSTTotal:     doc.CGSTTotal,
		SGSTTotal:     doc.SGSTTotal,
		RawTotal:      doc.RawTotal,
		RoundOff:      doc.RoundOff,
		GrandTotal:    doc.GrandTotal,
		DeletionMark:  doc.DeletionMark,
		Version:       doc.Version,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}

	if doc.CustomerID != nil {
		s := doc.CustomerID.String()
		resp.CustomerID = &s
	}

	resp.Lines = make([]SalesInvoiceLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		resp.Lines[i] = SalesInvoiceLineResponse{
			LineID:          line.LineID.String(),
			LineNo:          line.LineNo,
			ItemCode:        line.ItemCode,
			ItemName:        line.ItemName,
			Batch:           line.Batch,
			HSNCode:         line.HSNCode,
			Quantity:        line.Quantity.Int64(),
			Rate:            line.Rate,
			MRP:             line.MRP,
			DiscountPercent: line.DiscountPercent,
			CGSTPercent:     line.CGSTPercent,
			SGSTPercent:     line.SGSTPercent,
			Gross:           line.Gross,
			DiscountAmount:  line.DiscountAmount,
			Taxable:         line.Taxable,
			CGSTAmount:      line.CGSTAmount,
			SGSTAmount:      line.SGSTAmount,
			Total:           line.Total,
		}
	}

	return resp
}

// SalesInvoiceListResponse represents a list of sales invoices.
type SalesInvoiceListResponse struct {
	Items      []*SalesInvoiceResponse `json:"items"`
	TotalCount int                     `json:"totalCount"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
}

// --- Posting ---

// PostResultResponse wraps a posted document with its per-line outcomes.
type PostResultResponse struct {
	Document any             `json:"document"`
	Outcomes []StockOutcome  `json:"outcomes,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// StockOutcome is the per-line stock effect of a post.
type StockOutcome struct {
	LineNo   int    `json:"lineNo"`
	ItemCode string `json:"itemCode"`
	Batch    string `json:"batch,omitempty"`
	Status   string `json:"status"`
	NewStock int64  `json:"newStock"`
}

// FromPostResult converts a posting result to the response wrapper.
func FromPostResult(document any, result *posting.Result) *PostResultResponse {
	resp := &PostResultResponse{Document: document}
	if result == nil {
		return resp
	}

	resp.Warnings = result.Warnings
	resp.Outcomes = make([]StockOutcome, len(result.Outcomes))
	for i, o := range result.Outcomes {
		resp.Outcomes[i] = StockOutcome{
			LineNo:   o.LineNo,
			ItemCode: o.ItemCode,
			Batch:    o.Batch,
			Status:   string(o.Status),
			NewStock: o.NewStock.Int64(),
		}
	}
	return resp
}
