package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/domain/catalogs/party"
	"pharmabill/internal/infrastructure/http/v1/dto"
)

type partyCatalogHandler = CatalogHandler[
	*party.Party,
	dto.CreatePartyRequest,
	dto.UpdatePartyRequest,
]

// PartyHandler handles HTTP requests for the Party catalog (customers
// and suppliers) with a phone lookup on top of the generic CRUD.
type PartyHandler struct {
	*partyCatalogHandler
	service *party.Service
}

// NewPartyHandler creates a new party handler.
func NewPartyHandler(base *BaseHandler, service *party.Service) *PartyHandler {
	config := CatalogHandlerConfig[
		*party.Party,
		dto.CreatePartyRequest,
		dto.UpdatePartyRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "party",

		MapCreateDTO: func(req dto.CreatePartyRequest) *party.Party {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdatePartyRequest, existing *party.Party) *party.Party {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *party.Party) any {
			return dto.FromParty(entity)
		},
	}

	return &PartyHandler{
		partyCatalogHandler: NewCatalogHandler(base, config),
		service:             service,
	}
}

// FindByPhone handles GET /catalog/party/by-phone?phone=... - repeat
// customer lookup at the counter.
func (h *PartyHandler) FindByPhone(c *gin.Context) {
	ctx := c.Request.Context()

	phone := c.Query("phone")
	if phone == "" {
		h.Error(c, apperror.NewValidation("query parameter 'phone' is required"))
		return
	}

	p, err := h.service.FindByPhone(ctx, phone)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromParty(p))
}
