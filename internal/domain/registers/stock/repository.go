package stock

import (
	"context"
	"time"

	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/id"
	"pharmabill/internal/core/types"
)

// Repository defines operations for the stock register.
type Repository interface {
	// Movement operations

	// CreateMovements batch inserts movements (used during posting)
	CreateMovements(ctx context.Context, movements []entity.StockMovement) error

	// DeleteMovementsByRecorder removes all movements for a document version
	// Used during unposting or re-posting
	DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error

	// GetMovementsByRecorder retrieves all movements for a document
	GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error)

	// Record operations

	// GetRecord returns the inventory record for (itemCode, batch)
	GetRecord(ctx context.Context, itemCode, batch string) (entity.StockRecord, error)

	// GetRecordForUpdate returns the record with a row lock for apply
	GetRecordForUpdate(ctx context.Context, itemCode, batch string) (entity.StockRecord, error)

	// InsertRecord creates a new (itemCode, batch) record
	InsertRecord(ctx context.Context, rec entity.StockRecord) error

	// UpdateRecord overwrites quantity and descriptive fields of a record
	UpdateRecord(ctx context.Context, rec entity.StockRecord) error

	// AddQuantity applies a signed quantity change and returns the new stock
	AddQuantity(ctx context.Context, itemCode, batch string, delta types.Quantity) (types.Quantity, error)

	// ListRecords returns records matching a filter
	ListRecords(ctx context.Context, filter RecordFilter) ([]entity.StockRecord, error)

	// Reporting

	// GetMovementHistory returns movement history for an item
	GetMovementHistory(ctx context.Context, itemCode string, filter MovementFilter) ([]entity.StockMovement, error)

	// GetExpiring returns records whose expiry date falls before the cutoff
	GetExpiring(ctx context.Context, cutoff time.Time) ([]entity.StockRecord, error)

	// GetBelowReorder returns records whose quantity is at or below their reorder level
	GetBelowReorder(ctx context.Context) ([]entity.StockRecord, error)
}

// RecordFilter for filtering inventory record queries.
type RecordFilter struct {
	ItemCode    string
	NamePrefix  string
	Category    string
	ExcludeZero bool
	Limit       int
	Offset      int
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	Batch      string
	RecordType *entity.RecordType
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}
