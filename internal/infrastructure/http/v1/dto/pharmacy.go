package dto

import (
	"pharmabill/internal/domain/catalogs/pharmacy"
)

// --- Request DTOs ---

// CreatePharmacyRequest represents a request to create a pharmacy profile.
type CreatePharmacyRequest struct {
	Code      string  `json:"code,omitempty"`
	Name      string  `json:"name" binding:"required"`
	Address   *string `json:"address,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	GSTIN     *string `json:"gstin,omitempty"`
	DLNumber  *string `json:"dlNumber,omitempty"`
	IsDefault bool    `json:"isDefault,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreatePharmacyRequest) ToEntity() *pharmacy.Pharmacy {
	p := pharmacy.NewPharmacy(r.Code, r.Name)
	p.Address = r.Address
	p.Phone = r.Phone
	p.Email = r.Email
	p.GSTIN = r.GSTIN
	p.DLNumber = r.DLNumber
	p.IsDefault = r.IsDefault
	return p
}

// UpdatePharmacyRequest represents a request to update a pharmacy profile.
type UpdatePharmacyRequest struct {
	Code      *string `json:"code,omitempty"`
	Name      *string `json:"name,omitempty"`
	Address   *string `json:"address,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	GSTIN     *string `json:"gstin,omitempty"`
	DLNumber  *string `json:"dlNumber,omitempty"`
	IsDefault *bool   `json:"isDefault,omitempty"`
	Version   int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdatePharmacyRequest) ApplyTo(p *pharmacy.Pharmacy) {
	if r.Code != nil {
		p.Code = *r.Code
	}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Address != nil {
		p.Address = r.Address
	}
	if r.Phone != nil {
		p.Phone = r.Phone
	}
	if r.Email != nil {
		p.Email = r.Email
	}
	if r.GSTIN != nil {
		p.GSTIN = r.GSTIN
	}
	if r.DLNumber != nil {
		p.DLNumber = r.DLNumber
	}
	if r.IsDefault != nil {
		p.IsDefault = *r.IsDefault
	}
	p.Version = r.Version
}

// --- Response DTOs ---

// PharmacyResponse represents a pharmacy profile in API responses.
type PharmacyResponse struct {
	CatalogResponse
	Address   *string `json:"address,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	GSTIN     *string `json:"gstin,omitempty"`
	DLNumber  *string `json:"dlNumber,omitempty"`
	IsDefault bool    `json:"isDefault"`
}

// FromPharmacy converts domain entity to response DTO.
func FromPharmacy(p *pharmacy.Pharmacy) *PharmacyResponse {
	return &PharmacyResponse{
		CatalogResponse: FromCatalog(p.Catalog),
		Address:         p.Address,
		Phone:           p.Phone,
		Email:           p.Email,
		GSTIN:           p.GSTIN,
		DLNumber:        p.DLNumber,
		IsDefault:       p.IsDefault,
	}
}
