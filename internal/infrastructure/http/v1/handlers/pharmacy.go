package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmabill/internal/domain/catalogs/pharmacy"
	"pharmabill/internal/infrastructure/http/v1/dto"
)

type pharmacyCatalogHandler = CatalogHandler[
	*pharmacy.Pharmacy,
	dto.CreatePharmacyRequest,
	dto.UpdatePharmacyRequest,
]

// PharmacyHandler handles HTTP requests for the Pharmacy profile catalog.
type PharmacyHandler struct {
	*pharmacyCatalogHandler
	service *pharmacy.Service
}

// NewPharmacyHandler creates a new pharmacy handler.
func NewPharmacyHandler(base *BaseHandler, service *pharmacy.Service) *PharmacyHandler {
	config := CatalogHandlerConfig[
		*pharmacy.Pharmacy,
		dto.CreatePharmacyRequest,
		dto.UpdatePharmacyRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "pharmacy",

		MapCreateDTO: func(req dto.CreatePharmacyRequest) *pharmacy.Pharmacy {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdatePharmacyRequest, existing *pharmacy.Pharmacy) *pharmacy.Pharmacy {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *pharmacy.Pharmacy) any {
			return dto.FromPharmacy(entity)
		},
	}

	return &PharmacyHandler{
		pharmacyCatalogHandler: NewCatalogHandler(base, config),
		service:                service,
	}
}

// GetDefault handles GET /catalog/pharmacy/default - the profile printed
// on invoice headers.
func (h *PharmacyHandler) GetDefault(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := h.service.GetDefault(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPharmacy(p))
}
