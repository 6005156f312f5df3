package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/core/id"
	"pharmabill/internal/domain/reports"
)

// ReportsHandler handles HTTP requests for reports. Report structs are
// serialized as-is; they already carry their JSON shape.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetGSTSummary handles GET /reports/gst-summary?fromDate=...&toDate=...
func (h *ReportsHandler) GetGSTSummary(c *gin.Context) {
	ctx := c.Request.Context()

	fromDate, toDate, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	report, err := h.service.GSTSummary(ctx, reports.GSTSummaryFilter{
		FromDate: fromDate,
		ToDate:   toDate,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetProfitAnalysis handles GET /reports/profit
func (h *ReportsHandler) GetProfitAnalysis(c *gin.Context) {
	ctx := c.Request.Context()

	var filter reports.ProfitFilter

	if fromDate := c.Query("fromDate"); fromDate != "" {
		parsed, err := time.Parse(time.RFC3339, fromDate)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid fromDate format (RFC3339 expected)"))
			return
		}
		filter.FromDate = &parsed
	}

	if toDate := c.Query("toDate"); toDate != "" {
		parsed, err := time.Parse(time.RFC3339, toDate)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid toDate format (RFC3339 expected)"))
			return
		}
		filter.ToDate = &parsed
	}

	if supplierID := c.Query("supplierId"); supplierID != "" {
		parsed, err := id.Parse(supplierID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid supplierId format"))
			return
		}
		filter.SupplierID = &parsed
	}

	report, err := h.service.ProfitAnalysis(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetLowStock handles GET /reports/low-stock
func (h *ReportsHandler) GetLowStock(c *gin.Context) {
	ctx := c.Request.Context()

	report, err := h.service.LowStock(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetExpiry handles GET /reports/expiry?withinDays=90
func (h *ReportsHandler) GetExpiry(c *gin.Context) {
	ctx := c.Request.Context()

	report, err := h.service.Expiry(ctx, reports.ExpiryFilter{
		WithinDays: h.ParseIntQuery(c, "withinDays", 0),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetDailySales handles GET /reports/daily-sales?fromDate=...&toDate=...
func (h *ReportsHandler) GetDailySales(c *gin.Context) {
	ctx := c.Request.Context()

	fromDate, toDate, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	report, err := h.service.DailySales(ctx, reports.DailySalesFilter{
		FromDate: fromDate,
		ToDate:   toDate,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// parsePeriod reads the required fromDate/toDate query params.
func (h *ReportsHandler) parsePeriod(c *gin.Context) (time.Time, time.Time, bool) {
	fromDate, err := time.Parse(time.RFC3339, c.Query("fromDate"))
	if err != nil {
		h.Error(c, apperror.NewValidation("fromDate is required (RFC3339)"))
		return time.Time{}, time.Time{}, false
	}

	toDate, err := time.Parse(time.RFC3339, c.Query("toDate"))
	if err != nil {
		h.Error(c, apperror.NewValidation("toDate is required (RFC3339)"))
		return time.Time{}, time.Time{}, false
	}

	return fromDate, toDate, true
}
