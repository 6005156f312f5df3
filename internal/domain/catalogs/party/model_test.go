package party

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParty_ValidateGSTIN(t *testing.T) {
	p := NewParty("PT-2026-00001", "MedPlus Distributors", TypeSupplier)
	p.GSTIN = strPtr("27AAPFU0939F1ZV")

	require.NoError(t, p.Validate(context.Background()))

	p.GSTIN = strPtr("not-a-gstin")
	assert.Error(t, p.Validate(context.Background()))
}

func TestParty_ValidateType(t *testing.T) {
	p := NewParty("PT-2026-00002", "Ravi Kumar", PartyType("vendor"))
	assert.Error(t, p.Validate(context.Background()))

	p.Type = TypeCustomer
	assert.NoError(t, p.Validate(context.Background()))
}

func TestParty_Roles(t *testing.T) {
	both := NewParty("PT-2026-00003", "City Pharma Agency", TypeBoth)
	assert.True(t, both.IsCustomer())
	assert.True(t, both.IsSupplier())

	customer := NewParty("PT-2026-00004", "Anita Sharma", TypeCustomer)
	assert.True(t, customer.IsCustomer())
	assert.False(t, customer.IsSupplier())
}
