package dto

import (
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/catalogs/party"
)

// --- Request DTOs ---

// CreatePartyRequest represents a request to create a party.
type CreatePartyRequest struct {
	Code          string  `json:"code,omitempty"`
	Name          string  `json:"name" binding:"required"`
	Type          string  `json:"type" binding:"required,oneof=customer supplier both"`
	GSTIN         *string `json:"gstin,omitempty"`
	DLNumber      *string `json:"dlNumber,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	Address       *string `json:"address,omitempty"`
	ContactPerson *string `json:"contactPerson,omitempty"`
	CreditLimit   *string `json:"creditLimit,omitempty"`
	Comment       *string `json:"comment,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreatePartyRequest) ToEntity() *party.Party {
	p := party.NewParty(r.Code, r.Name, party.PartyType(r.Type))
	p.GSTIN = r.GSTIN
	p.DLNumber = r.DLNumber
	p.Phone = r.Phone
	p.Email = r.Email
	p.Address = r.Address
	p.ContactPerson = r.ContactPerson
	p.Comment = r.Comment

	if r.CreditLimit != nil {
		p.CreditLimit = parseMoney(*r.CreditLimit)
	}

	return p
}

// UpdatePartyRequest represents a request to update a party.
type UpdatePartyRequest struct {
	Code          *string `json:"code,omitempty"`
	Name          *string `json:"name,omitempty"`
	Type          *string `json:"type,omitempty"`
	GSTIN         *string `json:"gstin,omitempty"`
	DLNumber      *string `json:"dlNumber,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	Address       *string `json:"address,omitempty"`
	ContactPerson *string `json:"contactPerson,omitempty"`
	CreditLimit   *string `json:"creditLimit,omitempty"`
	Comment       *string `json:"comment,omitempty"`
	Version       int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdatePartyRequest) ApplyTo(p *party.Party) {
	if r.Code != nil {
		p.Code = *r.Code
	}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Type != nil {
		p.Type = party.PartyType(*r.Type)
	}
	if r.GSTIN != nil {
		p.GSTIN = r.GSTIN
	}
	if r.DLNumber != nil {
		p.DLNumber = r.DLNumber
	}
	if r.Phone != nil {
		p.Phone = r.Phone
	}
	if r.Email != nil {
		p.Email = r.Email
	}
	if r.Address != nil {
		p.Address = r.Address
	}
	if r.ContactPerson != nil {
		p.ContactPerson = r.ContactPerson
	}
	if r.CreditLimit != nil {
		p.CreditLimit = parseMoney(*r.CreditLimit)
	}
	if r.Comment != nil {
		p.Comment = r.Comment
	}
	p.Version = r.Version
}

// --- Response DTOs ---

// PartyResponse represents a party in API responses.
type PartyResponse struct {
	CatalogResponse
	Type          string      `json:"type"`
	GSTIN         *string     `json:"gstin,omitempty"`
	DLNumber      *string     `json:"dlNumber,omitempty"`
	Phone         *string     `json:"phone,omitempty"`
	Email         *string     `json:"email,omitempty"`
	Address       *string     `json:"address,omitempty"`
	ContactPerson *string     `json:"contactPerson,omitempty"`
	CreditLimit   types.Money `json:"creditLimit"`
	Comment       *string     `json:"comment,omitempty"`
}

// FromParty converts domain entity to response DTO.
func FromParty(p *party.Party) *PartyResponse {
	return &PartyResponse{
		CatalogResponse: FromCatalog(p.Catalog),
		Type:            string(p.Type),
		GSTIN:           p.GSTIN,
		DLNumber:        p.DLNumber,
		Phone:           p.Phone,
		Email:           p.Email,
		Address:         p.Address,
		ContactPerson:   p.ContactPerson,
		CreditLimit:     p.CreditLimit,
		Comment:         p.Comment,
	}
}
