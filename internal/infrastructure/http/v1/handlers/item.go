package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/domain"
	"pharmabill/internal/domain/catalogs/item"
	"pharmabill/internal/infrastructure/http/v1/dto"
)

// Type alias keeps handler signatures readable.
type itemCatalogHandler = CatalogHandler[
	*item.Item,
	dto.CreateItemRequest,
	dto.UpdateItemRequest,
]

// ItemHandler handles HTTP requests for the Item catalog. It embeds the
// generic catalog handler and adds barcode lookup and prefix search.
type ItemHandler struct {
	*itemCatalogHandler
	service *item.Service
}

// NewItemHandler creates a new item handler.
func NewItemHandler(base *BaseHandler, service *item.Service) *ItemHandler {
	config := CatalogHandlerConfig[
		*item.Item,
		dto.CreateItemRequest,
		dto.UpdateItemRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "item",

		MapCreateDTO: func(req dto.CreateItemRequest) *item.Item {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateItemRequest, existing *item.Item) *item.Item {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *item.Item) any {
			return dto.FromItem(entity)
		},
	}

	return &ItemHandler{
		itemCatalogHandler: NewCatalogHandler(base, config),
		service:            service,
	}
}

// Search handles GET /catalog/item/search?q=... - prefix search over
// name and generic name.
func (h *ItemHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	query := c.Query("q")
	if query == "" {
		h.Error(c, apperror.NewValidation("query parameter 'q' is required"))
		return
	}

	filter := domain.DefaultListFilter()
	filter.Limit = h.ParseIntQuery(c, "limit", 20)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	result, err := h.service.Search(ctx, query, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, it := range result.Items {
		items[i] = dto.FromItem(it)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// FindByBarcode handles GET /catalog/item/barcode/:barcode - the counter
// scanner path.
func (h *ItemHandler) FindByBarcode(c *gin.Context) {
	ctx := c.Request.Context()

	barcode := c.Param("barcode")
	if barcode == "" {
		h.Error(c, apperror.NewValidation("barcode is required"))
		return
	}

	it, err := h.service.FindByBarcode(ctx, barcode)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromItem(it))
}
