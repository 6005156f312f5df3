package dto

import (
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/catalogs/item"
)

// --- Request DTOs ---

// CreateItemRequest represents a request to create an item.
type CreateItemRequest struct {
	Code         string  `json:"code,omitempty"`
	Name         string  `json:"name" binding:"required"`
	GenericName  *string `json:"genericName,omitempty"`
	Manufacturer *string `json:"manufacturer,omitempty"`
	Category     string  `json:"category,omitempty"`
	Schedule     string  `json:"schedule,omitempty"`
	HSNCode      *string `json:"hsnCode,omitempty"`
	Barcode      *string `json:"barcode,omitempty"`
	PackSize     *string `json:"packSize,omitempty"`
	ReorderLevel *int64  `json:"reorderLevel,omitempty"`
	DefaultCGST  *string `json:"defaultCgst,omitempty"`
	DefaultSGST  *string `json:"defaultSgst,omitempty"`
	Description  *string `json:"description,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreateItemRequest) ToEntity() *item.Item {
	it := item.NewItem(r.Code, r.Name)
	it.GenericName = r.GenericName
	it.Manufacturer = r.Manufacturer
	it.Schedule = item.Schedule(r.Schedule)
	it.HSNCode = r.HSNCode
	it.Barcode = r.Barcode
	it.PackSize = r.PackSize
	it.Description = r.Description

	if r.Category != "" {
		it.Category = r.Category
	}
	if r.ReorderLevel != nil {
		it.ReorderLevel = types.Quantity(*r.ReorderLevel)
	}
	if r.DefaultCGST != nil {
		it.DefaultCGST = parseMoney(*r.DefaultCGST)
	}
	if r.DefaultSGST != nil {
		it.DefaultSGST = parseMoney(*r.DefaultSGST)
	}

	return it
}

// UpdateItemRequest represents a request to update an item.
type UpdateItemRequest struct {
	Code         *string `json:"code,omitempty"`
	Name         *string `json:"name,omitempty"`
	GenericName  *string `json:"genericName,omitempty"`
	Manufacturer *string `json:"manufacturer,omitempty"`
	Category     *string `json:"category,omitempty"`
	Schedule     *string `json:"schedule,omitempty"`
	HSNCode      *string `json:"hsnCode,omitempty"`
	Barcode      *string `json:"barcode,omitempty"`
	PackSize     *string `json:"packSize,omitempty"`
	ReorderLevel *int64  `json:"reorderLevel,omitempty"`
	DefaultCGST  *string `json:"defaultCgst,omitempty"`
	DefaultSGST  *string `json:"defaultSgst,omitempty"`
	Description  *string `json:"description,omitempty"`
	Version      int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateItemRequest) ApplyTo(it *item.Item) {
	if r.Code != nil {
		it.Code = *r.Code
	}
	if r.Name != nil {
		it.Name = *r.Name
	}
	if r.GenericName != nil {
		it.GenericName = r.GenericName
	}
	if r.Manufacturer != nil {
		it.Manufacturer = r.Manufacturer
	}
	if r.Category != nil {
		it.Category = *r.Category
	}
	if r.Schedule != nil {
		it.Schedule = item.Schedule(*r.Schedule)
	}
	if r.HSNCode != nil {
		it.HSNCode = r.HSNCode
	}
	if r.Barcode != nil {
		it.Barcode = r.Barcode
	}
	if r.PackSize != nil {
		it.PackSize = r.PackSize
	}
	if r.ReorderLevel != nil {
		it.ReorderLevel = types.Quantity(*r.ReorderLevel)
	}
	if r.DefaultCGST != nil {
		it.DefaultCGST = parseMoney(*r.DefaultCGST)
	}
	if r.DefaultSGST != nil {
		it.DefaultSGST = parseMoney(*r.DefaultSGST)
	}
	if r.Description != nil {
		it.Description = r.Description
	}
	it.Version = r.Version
}

// --- Response DTOs ---

// ItemResponse represents an item in API responses.
type ItemResponse struct {
	CatalogResponse
	GenericName  *string     `json:"genericName,omitempty"`
	Manufacturer *string     `json:"manufacturer,omitempty"`
	Category     string      `json:"category"`
	Schedule     string      `json:"schedule,omitempty"`
	HSNCode      *string     `json:"hsnCode,omitempty"`
	Barcode      *string     `json:"barcode,omitempty"`
	PackSize     *string     `json:"packSize,omitempty"`
	ReorderLevel int64       `json:"reorderLevel"`
	DefaultCGST  types.Money `json:"defaultCgst"`
	DefaultSGST  types.Money `json:"defaultSgst"`
	Description  *string     `json:"description,omitempty"`
}

// FromItem converts domain entity to response DTO.
func FromItem(it *item.Item) *ItemResponse {
	return &ItemResponse{
		CatalogResponse: FromCatalog(it.Catalog),
		GenericName:     it.GenericName,
		Manufacturer:    it.Manufacturer,
		Category:        it.Category,
		Schedule:        string(it.Schedule),
		HSNCode:         it.HSNCode,
		Barcode:         it.Barcode,
		PackSize:        it.PackSize,
		ReorderLevel:    it.ReorderLevel.Int64(),
		DefaultCGST:     it.DefaultCGST,
		DefaultSGST:     it.DefaultSGST,
		Description:     it.Description,
	}
}

// parseMoney parses a decimal string, returning zero on garbage. DTO
// money fields arrive as strings to avoid float rounding on the wire.
func parseMoney(s string) types.Money {
	m, err := types.NewMoneyFromString(s)
	if err != nil {
		return types.Zero()
	}
	return m
}
