// Package pharmacy provides the Pharmacy catalog: the store's own
// profile printed on invoice headers.
package pharmacy

import (
	"context"
	"regexp"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/core/entity"
)

var gstinRE = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// Pharmacy represents the store's registration profile.
type Pharmacy struct {
	entity.Catalog

	// Address is the store address
	Address *string `db:"address" json:"address,omitempty"`

	// Phone is the store contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the store contact email
	Email *string `db:"email" json:"email,omitempty"`

	// GSTIN is the store's GST registration number
	GSTIN *string `db:"gstin" json:"gstin,omitempty"`

	// DLNumber is the store's drug license number
	DLNumber *string `db:"dl_number" json:"dlNumber,omitempty"`

	// IsDefault marks the profile used for new invoices
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewPharmacy creates a new Pharmacy with required fields.
func NewPharmacy(code, name string) *Pharmacy {
	return &Pharmacy{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable interface.
func (p *Pharmacy) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.GSTIN != nil && *p.GSTIN != "" && !gstinRE.MatchString(*p.GSTIN) {
		return apperror.NewValidation("invalid GSTIN format").
			WithDetail("field", "gstin")
	}

	return nil
}
