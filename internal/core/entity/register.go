// Package entity provides core domain entities.
package entity

import (
	"time"

	"pharmabill/internal/core/id"
	"pharmabill/internal/core/types"
)

// RecordType defines movement direction for the stock register.
type RecordType string

const (
	// RecordTypeReceipt increases stock (purchase side)
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases stock (sales side)
	RecordTypeExpense RecordType = "expense"
)

// MovementBase contains common fields for all register movements.
// Movements are immutable - they are never updated, only deleted and recreated.
type MovementBase struct {
	// LineID is unique identifier for this movement line (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// RecorderID is the document that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the document type (e.g., "SalesInvoice", "PurchaseInvoice")
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// RecorderVersion tracks which posting iteration created this movement
	// Allows efficient cleanup: DELETE WHERE recorder_id = X AND recorder_version < Y
	RecorderVersion int `db:"recorder_version" json:"recorderVersion"`

	// Period is the business date for the movement (for period-based queries)
	Period time.Time `db:"period" json:"period"`

	// RecordType: receipt or expense
	RecordType RecordType `db:"record_type" json:"recordType"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovementBase creates a new movement base with generated LineID.
func NewMovementBase(recorderID id.ID, recorderType string, recorderVersion int, period time.Time, recordType RecordType) MovementBase {
	return MovementBase{
		LineID:          id.New(),
		RecorderID:      recorderID,
		RecorderType:    recorderType,
		RecorderVersion: recorderVersion,
		Period:          period,
		RecordType:      recordType,
		CreatedAt:       time.Now().UTC(),
	}
}

// StockMovement represents a movement in the stock register.
// Tracks quantity changes per (item code, batch).
type StockMovement struct {
	MovementBase

	// Dimensions
	ItemCode string `db:"item_code" json:"itemCode"`
	Batch    string `db:"batch" json:"batch"`

	// Resources
	Quantity types.Quantity `db:"quantity" json:"quantity"`
}

// NewStockMovement creates a new stock movement.
func NewStockMovement(
	recorderID id.ID,
	recorderType string,
	recorderVersion int,
	period time.Time,
	recordType RecordType,
	itemCode, batch string,
	quantity types.Quantity,
) StockMovement {
	return StockMovement{
		MovementBase: NewMovementBase(recorderID, recorderType, recorderVersion, period, recordType),
		ItemCode:     itemCode,
		Batch:        batch,
		Quantity:     quantity,
	}
}

// SignedQuantity returns quantity with sign based on record type.
// Receipt = positive, Expense = negative.
func (m *StockMovement) SignedQuantity() types.Quantity {
	if m.RecordType == RecordTypeExpense {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// StockRecord is one inventory record, keyed by (item code, batch).
// An empty batch means "no batch". Besides the running quantity it carries
// the descriptive fields a pharmacy tracks per batch: MRP, prices, expiry,
// tax rates and packaging.
type StockRecord struct {
	// Dimensions
	ItemCode string `db:"item_code" json:"itemCode"`
	Batch    string `db:"batch" json:"batch"`

	// Running balance. May go negative: point of sale never blocks a sale
	// on a stock-count discrepancy.
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Descriptive fields, overwritten from the newest purchase line
	ItemName      string      `db:"item_name" json:"itemName"`
	MRP           types.Money `db:"mrp" json:"mrp"`
	SellingPrice  types.Money `db:"selling_price" json:"sellingPrice"`
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`
	CGSTRate      types.Money `db:"cgst_rate" json:"cgstRate"`
	SGSTRate      types.Money `db:"sgst_rate" json:"sgstRate"`
	HSNCode       string      `db:"hsn_code" json:"hsnCode"`
	Manufacturer  string      `db:"manufacturer" json:"manufacturer"`
	PackSize      string      `db:"pack_size" json:"packSize"`
	ExpiryDate    *time.Time  `db:"expiry_date" json:"expiryDate,omitempty"`

	// Historical fields preserved across purchase updates
	Category     string `db:"category" json:"category"`
	ReorderLevel int    `db:"reorder_level" json:"reorderLevel"`
	Supplier     string `db:"supplier" json:"supplier"`

	// Metadata
	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
