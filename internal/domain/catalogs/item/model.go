// Package item provides the Item catalog: the medicine master.
// Stock records reference items by code; the catalog carries the
// regulatory and merchandising data a batch does not.
package item

import (
	"context"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/types"
)

// Schedule is the drug schedule class under the Drugs and Cosmetics
// Rules. Empty means over-the-counter.
type Schedule string

const (
	ScheduleNone Schedule = ""
	ScheduleH    Schedule = "H"
	ScheduleH1   Schedule = "H1"
	ScheduleX    Schedule = "X"
)

// Item represents one sellable medicine or product.
type Item struct {
	entity.Catalog

	// GenericName is the composition / salt name
	GenericName *string `db:"generic_name" json:"genericName,omitempty"`

	// Manufacturer is the marketing company name (free text)
	Manufacturer *string `db:"manufacturer" json:"manufacturer,omitempty"`

	// Category groups items for reporting ("General", "Antibiotic", ...)
	Category string `db:"category" json:"category"`

	// Schedule is the prescription class; scheduled items need a doctor
	// on the sales invoice
	Schedule Schedule `db:"schedule" json:"schedule,omitempty"`

	// HSNCode for GST classification
	HSNCode *string `db:"hsn_code" json:"hsnCode,omitempty"`

	// Barcode (EAN-13 etc.), unique when set
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// PackSize is the retail pack description ("10x10", "100ml")
	PackSize *string `db:"pack_size" json:"packSize,omitempty"`

	// ReorderLevel is the low-stock threshold in whole packs
	ReorderLevel types.Quantity `db:"reorder_level" json:"reorderLevel"`

	// Default GST split applied when a purchase line doesn't specify one
	DefaultCGST types.Money `db:"default_cgst" json:"defaultCgst"`
	DefaultSGST types.Money `db:"default_sgst" json:"defaultSgst"`

	// Description is a free-form note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewItem creates a new Item with required fields.
func NewItem(code, name string) *Item {
	return &Item{
		Catalog:      entity.NewCatalog(code, name),
		Category:     "General",
		ReorderLevel: 10,
	}
}

// Validate implements entity.Validatable interface.
func (i *Item) Validate(ctx context.Context) error {
	if err := i.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidSchedule(i.Schedule) {
		return apperror.NewValidation("invalid drug schedule").
			WithDetail("field", "schedule").
			WithDetail("value", string(i.Schedule))
	}

	if i.ReorderLevel < 0 {
		return apperror.NewValidation("reorder level cannot be negative").
			WithDetail("field", "reorderLevel")
	}

	if i.DefaultCGST.IsNegative() || i.DefaultSGST.IsNegative() {
		return apperror.NewValidation("GST rate cannot be negative").
			WithDetail("field", "defaultCgst")
	}

	return nil
}

// IsScheduled returns true if the item needs a prescribing doctor.
func (i *Item) IsScheduled() bool {
	return i.Schedule != ScheduleNone
}

func isValidSchedule(s Schedule) bool {
	switch s {
	case ScheduleNone, ScheduleH, ScheduleH1, ScheduleX:
		return true
	}
	return false
}
