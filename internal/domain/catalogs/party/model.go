// Package party provides the Party catalog.
// Parties are the pharmacy's business partners: registered customers
// and supplier distributors.
package party

import (
	"context"
	"regexp"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/types"
)

// Pre-compiled regex patterns for validation (performance optimization)
var (
	gstinRE = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	phoneRE = regexp.MustCompile(`^\+?[0-9][0-9 -]{6,14}$`)
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// PartyType defines the type of party.
type PartyType string

const (
	TypeCustomer PartyType = "customer"
	TypeSupplier PartyType = "supplier"
	TypeBoth     PartyType = "both"
)

// Party represents a business partner (customer, supplier, or both).
type Party struct {
	entity.Catalog

	// Type defines whether this is a customer, supplier, or both
	Type PartyType `db:"type" json:"type"`

	// GSTIN is the GST registration number (unregistered parties leave it empty)
	GSTIN *string `db:"gstin" json:"gstin,omitempty"`

	// DLNumber is the drug license number (suppliers)
	DLNumber *string `db:"dl_number" json:"dlNumber,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the primary contact email
	Email *string `db:"email" json:"email,omitempty"`

	// Address is the postal address
	Address *string `db:"address" json:"address,omitempty"`

	// ContactPerson is the primary contact name
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// CreditLimit caps outstanding credit sales for customers.
	// Zero means no credit.
	CreditLimit types.Money `db:"credit_limit" json:"creditLimit"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewParty creates a new Party with required fields.
func NewParty(code, name string, partyType PartyType) *Party {
	return &Party{
		Catalog:     entity.NewCatalog(code, name),
		Type:        partyType,
		CreditLimit: types.Zero(),
	}
}

// Validate implements entity.Validatable interface.
func (p *Party) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidPartyType(p.Type) {
		return apperror.NewValidation("invalid party type").
			WithDetail("field", "type").
			WithDetail("value", string(p.Type))
	}

	if p.GSTIN != nil && *p.GSTIN != "" && !gstinRE.MatchString(*p.GSTIN) {
		return apperror.NewValidation("invalid GSTIN format").
			WithDetail("field", "gstin")
	}

	if p.Phone != nil && *p.Phone != "" && !phoneRE.MatchString(*p.Phone) {
		return apperror.NewValidation("invalid phone format").
			WithDetail("field", "phone")
	}

	if p.Email != nil && *p.Email != "" && !emailRE.MatchString(*p.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	if p.CreditLimit.IsNegative() {
		return apperror.NewValidation("credit limit cannot be negative").
			WithDetail("field", "creditLimit")
	}

	return nil
}

// IsCustomer returns true if the party can buy.
func (p *Party) IsCustomer() bool {
	return p.Type == TypeCustomer || p.Type == TypeBoth
}

// IsSupplier returns true if the party can supply.
func (p *Party) IsSupplier() bool {
	return p.Type == TypeSupplier || p.Type == TypeBoth
}

func isValidPartyType(t PartyType) bool {
	switch t {
	case TypeCustomer, TypeSupplier, TypeBoth:
		return true
	}
	return false
}
