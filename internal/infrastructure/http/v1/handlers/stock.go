package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/core/entity"
	"pharmabill/internal/domain/registers/stock"
	"pharmabill/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests against the stock register:
// inventory records, availability, movement trails and reorder queries.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock register handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// ListRecords handles GET /registers/stock/records
func (h *StockHandler) ListRecords(c *gin.Context) {
	ctx := c.Request.Context()

	filter := stock.RecordFilter{
		ItemCode:    c.Query("itemCode"),
		NamePrefix:  c.Query("namePrefix"),
		Category:    c.Query("category"),
		ExcludeZero: c.Query("excludeZero") == "true",
		Limit:       h.ParseIntQuery(c, "limit", 100),
		Offset:      h.ParseIntQuery(c, "offset", 0),
	}

	records, err := h.service.ListRecords(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockRecords(records))
}

// GetRecord handles GET /registers/stock/records/:itemCode?batch=...
func (h *StockHandler) GetRecord(c *gin.Context) {
	ctx := c.Request.Context()

	itemCode := c.Param("itemCode")
	batch := c.Query("batch")

	record, err := h.service.GetRecord(ctx, itemCode, batch)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockRecord(record))
}

// GetAvailability handles GET /registers/stock/availability/:itemCode -
// total stock for an item across batches.
func (h *StockHandler) GetAvailability(c *gin.Context) {
	ctx := c.Request.Context()

	itemCode := c.Param("itemCode")

	qty, err := h.service.ItemAvailability(ctx, itemCode)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ItemAvailabilityResponse{
		ItemCode: itemCode,
		Quantity: qty.Int64(),
	})
}

// GetExpiring handles GET /registers/stock/expiring?withinDays=90
func (h *StockHandler) GetExpiring(c *gin.Context) {
	ctx := c.Request.Context()

	days := h.ParseIntQuery(c, "withinDays", 90)
	if days <= 0 {
		h.Error(c, apperror.NewValidation("withinDays must be positive"))
		return
	}

	records, err := h.service.Expiring(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockRecords(records))
}

// GetBelowReorder handles GET /registers/stock/below-reorder
func (h *StockHandler) GetBelowReorder(c *gin.Context) {
	ctx := c.Request.Context()

	records, err := h.service.BelowReorder(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockRecords(records))
}

// GetMovements handles GET /registers/stock/movements/:itemCode - the
// audit trail of receipts and expenses for one item.
func (h *StockHandler) GetMovements(c *gin.Context) {
	ctx := c.Request.Context()

	itemCode := c.Param("itemCode")

	filter := stock.MovementFilter{
		Batch:  c.Query("batch"),
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if recordType := c.Query("recordType"); recordType != "" {
		rt := entity.RecordType(recordType)
		if rt != entity.RecordTypeReceipt && rt != entity.RecordTypeExpense {
			h.Error(c, apperror.NewValidation("recordType must be 'receipt' or 'expense'"))
			return
		}
		filter.RecordType = &rt
	}

	if fromDate := c.Query("fromDate"); fromDate != "" {
		if parsed, err := time.Parse(time.RFC3339, fromDate); err == nil {
			filter.FromDate = &parsed
		}
	}

	if toDate := c.Query("toDate"); toDate != "" {
		if parsed, err := time.Parse(time.RFC3339, toDate); err == nil {
			filter.ToDate = &parsed
		}
	}

	movements, err := h.service.MovementHistory(ctx, itemCode, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockMovements(movements))
}
