package dto

import (
	"time"

	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/types"
)

// --- Stock records ---

// StockRecordResponse represents one (item, batch) inventory record.
type StockRecordResponse struct {
	ItemCode       string      `json:"itemCode"`
	Batch          string      `json:"batch,omitempty"`
	ItemName       string      `json:"itemName"`
	Quantity       int64       `json:"quantity"`
	MRP            types.Money `json:"mrp"`
	SellingPrice   types.Money `json:"sellingPrice"`
	PurchasePrice  types.Money `json:"purchasePrice"`
	CGSTRate       types.Money `json:"cgstRate"`
	SGSTRate       types.Money `json:"sgstRate"`
	HSNCode        string      `json:"hsnCode,omitempty"`
	Manufacturer   string      `json:"manufacturer,omitempty"`
	PackSize       string      `json:"packSize,omitempty"`
	ExpiryDate     *time.Time  `json:"expiryDate,omitempty"`
	Category       string      `json:"category"`
	ReorderLevel   int         `json:"reorderLevel"`
	Supplier       string      `json:"supplier,omitempty"`
	LastMovementAt time.Time   `json:"lastMovementAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// FromStockRecord converts a stock record to response DTO.
func FromStockRecord(r entity.StockRecord) StockRecordResponse {
	return StockRecordResponse{
		ItemCode:       r.ItemCode,
		Batch:          r.Batch,
		ItemName:       r.ItemName,
		Quantity:       r.Quantity.Int64(),
		MRP:            r.MRP,
		SellingPrice:   r.SellingPrice,
		PurchasePrice:  r.PurchasePrice,
		CGSTRate:       r.CGSTRate,
		SGSTRate:       r.SGSTRate,
		HSNCode:        r.HSNCode,
		Manufacturer:   r.Manufacturer,
		PackSize:       r.PackSize,
		ExpiryDate:     r.ExpiryDate,
		Category:       r.Category,
		ReorderLevel:   r.ReorderLevel,
		Supplier:       r.Supplier,
		LastMovementAt: r.LastMovementAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// StockRecordListResponse represents a list of stock records.
type StockRecordListResponse struct {
	Items []StockRecordResponse `json:"items"`
	Count int                   `json:"count"`
}

// FromStockRecords converts a slice of records to the list response.
func FromStockRecords(records []entity.StockRecord) StockRecordListResponse {
	items := make([]StockRecordResponse, len(records))
	for i, r := range records {
		items[i] = FromStockRecord(r)
	}
	return StockRecordListResponse{Items: items, Count: len(items)}
}

// --- Stock movements ---

// StockMovementResponse represents one ledger movement.
type StockMovementResponse struct {
	LineID       string    `json:"lineId"`
	RecorderID   string    `json:"recorderId"`
	RecorderType string    `json:"recorderType"`
	Period       time.Time `json:"period"`
	RecordType   string    `json:"recordType"`
	ItemCode     string    `json:"itemCode"`
	Batch        string    `json:"batch,omitempty"`
	Quantity     int64     `json:"quantity"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FromStockMovement converts a movement to response DTO.
func FromStockMovement(m entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		LineID:       m.LineID.String(),
		RecorderID:   m.RecorderID.String(),
		RecorderType: m.RecorderType,
		Period:       m.Period,
		RecordType:   string(m.RecordType),
		ItemCode:     m.ItemCode,
		Batch:        m.Batch,
		Quantity:     m.Quantity.Int64(),
		CreatedAt:    m.CreatedAt,
	}
}

// StockMovementListResponse represents a movement trail.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Count int                     `json:"count"`
}

// FromStockMovements converts movements to the list response.
func FromStockMovements(movements []entity.StockMovement) StockMovementListResponse {
	items := make([]StockMovementResponse, len(movements))
	for i, m := range movements {
		items[i] = FromStockMovement(m)
	}
	return StockMovementListResponse{Items: items, Count: len(items)}
}

// --- Availability ---

// ItemAvailabilityResponse is total stock for an item across batches.
type ItemAvailabilityResponse struct {
	ItemCode string `json:"itemCode"`
	Quantity int64  `json:"quantity"`
}
