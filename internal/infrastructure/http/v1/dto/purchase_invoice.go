package dto

import (
	"time"

	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/id"
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/documents/purchase_invoice"
)

// --- Request DTOs ---

// CreatePurchaseInvoiceRequest represents a request to create a purchase invoice.
type CreatePurchaseInvoiceRequest struct {
	Number            string                       `json:"number,omitempty"`
	Date              *time.Time                   `json:"date,omitempty"`
	SupplierID        string                       `json:"supplierId" binding:"required"`
	SupplierDocNumber string                       `json:"supplierDocNumber,omitempty"`
	SupplierDocDate   *time.Time                   `json:"supplierDocDate,omitempty"`
	PaymentMode       string                       `json:"paymentMode,omitempty"`
	Comment           string                       `json:"comment,omitempty"`
	Lines             []PurchaseInvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
	PostImmediately   bool                         `json:"postImmediately,omitempty"`
}

// PurchaseInvoiceLineRequest represents a line in create/update requests.
// Money fields are decimal strings.
type PurchaseInvoiceLineRequest struct {
	ItemCode        string     `json:"itemCode,omitempty"`
	ItemName        string     `json:"itemName" binding:"required"`
	Batch           string     `json:"batch,omitempty"`
	Quantity        int64      `json:"quantity" binding:"required,gt=0"`
	FreeQuantity    int64      `json:"freeQuantity,omitempty"`
	Rate            string     `json:"rate" binding:"required"`
	MRP             string     `json:"mrp,omitempty"`
	DiscountPercent string     `json:"discountPercent,omitempty"`
	CGSTPercent     string     `json:"cgstPercent,omitempty"`
	SGSTPercent     string     `json:"sgstPercent,omitempty"`
	HSNCode         string     `json:"hsnCode,omitempty"`
	Manufacturer    string     `json:"manufacturer,omitempty"`
	PackSize        string     `json:"packSize,omitempty"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty"`
}

func (l PurchaseInvoiceLineRequest) toLine() purchase_invoice.PurchaseInvoiceLine {
	return purchase_invoice.PurchaseInvoiceLine{
		ItemCode:        l.ItemCode,
		ItemName:        l.ItemName,
		Batch:           l.Batch,
		Quantity:        types.Quantity(l.Quantity),
		FreeQuantity:    types.Quantity(l.FreeQuantity),
		Rate:            parseMoney(l.Rate),
		MRP:             parseMoney(l.MRP),
		DiscountPercent: parseMoney(l.DiscountPercent),
		CGSTPercent:     parseMoney(l.CGSTPercent),
		SGSTPercent:     parseMoney(l.SGSTPercent),
		HSNCode:         l.HSNCode,
		Manufacturer:    l.Manufacturer,
		PackSize:        l.PackSize,
		ExpiryDate:      l.ExpiryDate,
	}
}

// ToEntity converts request to domain entity.
func (r *CreatePurchaseInvoiceRequest) ToEntity() *purchase_invoice.PurchaseInvoice {
	supplierID, _ := id.Parse(r.SupplierID)

	doc := purchase_invoice.NewPurchaseInvoice(supplierID)
	doc.Number = r.Number
	doc.SupplierDocNumber = r.SupplierDocNumber
	doc.SupplierDocDate = r.SupplierDocDate
	doc.Comment = r.Comment
	doc.PaymentMode = entity.PaymentMode(r.PaymentMode)

	if r.Date != nil {
		doc.Date = *r.Date
	}

	for _, line := range r.Lines {
		doc.AddLine(line.toLine())
	}

	return doc
}

// UpdatePurchaseInvoiceRequest represents a request to update a purchase invoice.
type UpdatePurchaseInvoiceRequest struct {
	Number            *string                      `json:"number,omitempty"`
	Date              *time.Time                   `json:"date,omitempty"`
	SupplierID        *string                      `json:"supplierId,omitempty"`
	SupplierDocNumber *string                      `json:"supplierDocNumber,omitempty"`
	SupplierDocDate   *time.Time                   `json:"supplierDocDate,omitempty"`
	PaymentMode       *string                      `json:"paymentMode,omitempty"`
	Comment           *string                      `json:"comment,omitempty"`
	Lines             []PurchaseInvoiceLineRequest `json:"lines,omitempty"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdatePurchaseInvoiceRequest) ApplyTo(doc *purchase_invoice.PurchaseInvoice) {
	if r.Number != nil {
		doc.Number = *r.Number
	}
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.SupplierID != nil {
		if parsed, err := id.Parse(*r.SupplierID); err == nil {
			doc.SupplierID = parsed
		}
	}
	if r.SupplierDocNumber != nil {
		doc.SupplierDocNumber = *r.SupplierDocNumber
	}
	if r.SupplierDocDate != nil {
		doc.SupplierDocDate = r.SupplierDocDate
	}
	if r.PaymentMode != nil {
		doc.PaymentMode = entity.PaymentMode(*r.PaymentMode)
	}
	if r.Comment != nil {
		doc.Comment = *r.Comment
	}

	// If lines are provided, rebuild them
	if r.Lines != nil {
		doc.Lines = make([]purchase_invoice.PurchaseInvoiceLine, 0, len(r.Lines))
		for _, line := range r.Lines {
			doc.AddLine(line.toLine())
		}
	}
}

// --- Response DTOs ---

// PurchaseInvoiceResponse represents a purchase invoice in API responses.
type PurchaseInvoiceResponse struct {
	ID                string     `json:"id"`
	Number            string     `json:"number"`
	Date              time.Time  `json:"date"`
	Posted            bool       `json:"posted"`
	PostedVersion     int        `json:"postedVersion,omitempty"`
	SupplierID        string     `json:"supplierId"`
	SupplierDocNumber string     `json:"supplierDocNumber,omitempty"`
	SupplierDocDate   *time.Time `json:"supplierDocDate,omitempty"`
	PaymentMode       string     `json:"paymentMode"`
	Comment           string     `json:"comment,omitempty"`

	TotalQuantity     int64       `json:"totalQuantity"`
	TotalFreeQuantity int64       `json:"totalFreeQuantity"`
	TaxableTotal      types.Money `json:"taxableTotal"`
	CGSTTotal         types.Money `json:"cgstTotal"`
	SGSTTotal         types.Money `json:"sgstTotal"`
	RawTotal          types.Money `json:"rawTotal"`
	RoundOff          types.Money `json:"roundOff"`
	GrandTotal        types.Money `json:"grandTotal"`

	// Margin locked into the consignment at MRP
	PotentialProfit types.Money `json:"potentialProfit"`
	MarginPercent   types.Money `json:"marginPercent"`

	Lines        []PurchaseInvoiceLineResponse `json:"lines,omitempty"`
	DeletionMark bool                          `json:"deletionMark,omitempty"`
	Version      int                           `json:"version"`
	CreatedAt    time.Time                     `json:"createdAt"`
	UpdatedAt    time.Time                     `json:"updatedAt"`
}

// PurchaseInvoiceLineResponse represents a line in API responses.
type PurchaseInvoiceLineResponse struct {
	LineID   string `json:"lineId"`
	LineNo   int    `json:"lineNo"`
	ItemCode string `json:"itemCode"`
	ItemName string `json:"itemName"`
	Batch    string `json:"batch,omitempty"`

	Quantity        int64       `json:"quantity"`
	FreeQuantity    int64       `json:"freeQuantity"`
	Rate            types.Money `json:"rate"`
	MRP             types.Money `json:"mrp"`
	DiscountPercent types.Money `json:"discountPercent"`
	CGSTPercent     types.Money `json:"cgstPercent"`
	SGSTPercent     types.Money `json:"sgstPercent"`

	HSNCode      string     `json:"hsnCode,omitempty"`
	Manufacturer string     `json:"manufacturer,omitempty"`
	PackSize     string     `json:"packSize,omitempty"`
	ExpiryDate   *time.Time `json:"expiryDate,omitempty"`

	Gross          types.Money `json:"gross"`
	DiscountAmount types.Money `json:"discountAmount"`
	Taxable        types.Money `json:"taxable"`
	CGSTAmount     types.Money `json:"cgstAmount"`
	SGSTAmount     types.Money `json:"sgstAmount"`
	Total          types.Money `json:"total"`
}

// FromPurchaseInvoice converts domain entity to response DTO.
func FromPurchaseInvoice(doc *purchase_invoice.PurchaseInvoice) *PurchaseInvoiceResponse {
	resp := &PurchaseInvoiceResponse{
		ID:                doc.ID.String(),
		Number:            doc.Number,
		Date:              doc.Date,
		Posted:            doc.Posted,
		PostedVersion:     doc.PostedVersion,
		SupplierID:        doc.SupplierID.String(),
		SupplierDocNumber: doc.SupplierDocNumber,
		SupplierDocDate:   doc.SupplierDocDate,
		PaymentMode:       string(doc.PaymentMode),
		Comment:           doc.Comment,
		TotalQuantity:     doc.TotalQuantity.Int64(),
		TotalFreeQuantity: doc.TotalFreeQuantity.Int64(),
		TaxableTotal:      doc.TaxableTotal,
		CGSTTotal:         doc.CGSTTotal,
		SGSTTotal:         doc.SGSTTotal,
		RawTotal:          doc.RawTotal,
		RoundOff:          doc.RoundOff,
		GrandTotal:        doc.GrandTotal,
		PotentialProfit:   doc.PotentialProfit(),
		MarginPercent:     doc.ProfitMarginPercent(),
		DeletionMark:      doc.DeletionMark,
		Version:           doc.Version,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}

	resp.Lines = make([]PurchaseInvoiceLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		resp.Lines[i] = PurchaseInvoiceLineResponse{
			LineID:          line.LineID.String(),
			LineNo:          line.LineNo,
			ItemCode:        line.ItemCode,
			ItemName:        line.ItemName,
			Batch:           line.Batch,
			Quantity:        line.Quantity.Int64(),
			FreeQuantity:    line.FreeQuantity.Int64(),
			Rate:            line.Rate,
			MRP:             line.MRP,
			DiscountPercent: line.DiscountPercent,
			CGSTPercent:     line.CGSTPercent,
			SGSTPercent:     line.SGSTPercent,
			HSNCode:         line.HSNCode,
			Manufacturer:    line.Manufacturer,
			PackSize:        line.PackSize,
			ExpiryDate:      line.ExpiryDate,
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

// PurchaseInvoiceListResponse represents a list of purchase invoices.
type PurchaseInvoiceListResponse struct {
	Items      []*PurchaseInvoiceResponse `json:"items"`
	TotalCount int                        `json:"totalCount"`
	Limit      int                        `json:"limit"`
	Offset     int                        `json:"offset"`
}
