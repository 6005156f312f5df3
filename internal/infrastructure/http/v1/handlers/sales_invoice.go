package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pharmabill/internal/core/id"
	"pharmabill/internal/domain"
	"pharmabill/internal/domain/documents/sales_invoice"
	"pharmabill/internal/infrastructure/http/v1/dto"
)

// SalesInvoiceHandler handles HTTP requests for SalesInvoice documents.
type SalesInvoiceHandler struct {
	*BaseDocumentHandler[*sales_invoice.SalesInvoice, dto.CreateSalesInvoiceRequest, dto.UpdateSalesInvoiceRequest]
	service *sales_invoice.Service
}

// NewSalesInvoiceHandler creates a new sales invoice handler.
func NewSalesInvoiceHandler(base *BaseHandler, service *sales_invoice.Service) *SalesInvoiceHandler {
	cfg := BaseDocumentHandlerConfig[*sales_invoice.SalesInvoice, dto.CreateSalesInvoiceRequest, dto.UpdateSalesInvoiceRequest]{
		Service:    service,
		EntityName: "sales-invoice",
		MapCreateDTO: func(req dto.CreateSalesInvoiceRequest) *sales_invoice.SalesInvoice {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateSalesInvoiceRequest, existing *sales_invoice.SalesInvoice) *sales_invoice.SalesInvoice {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(doc *sales_invoice.SalesInvoice) any {
			return dto.FromSalesInvoice(doc)
		},
		IsPostImmediately: func(req dto.CreateSalesInvoiceRequest) bool {
			return req.PostImmediately
		},
	}

	return &SalesInvoiceHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// List handles GET /document/sales-invoice - list with filtering.
func (h *SalesInvoiceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := sales_invoice.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if customerID := c.Query("customerId"); customerID != "" {
		if parsed, err := id.Parse(customerID); err == nil {
			filter.CustomerID = &parsed
		}
	}

	if doctorName := c.Query("doctorName"); doctorName != "" {
		filter.DoctorName = &doctorName
	}

	if paymentMode := c.Query("paymentMode"); paymentMode != "" {
		filter.PaymentMode = &paymentMode
	}

	if posted := c.Query("posted"); posted != "" {
		val := posted == "true"
		filter.Posted = &val
	}

	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		if parsed, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			filter.DateFrom = &parsed
		}
	}

	if dateTo := c.Query("dateTo"); dateTo != "" {
		if parsed, err := time.Parse(time.RFC3339, dateTo); err == nil {
			filter.DateTo = &parsed
		}
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.SalesInvoiceResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromSalesInvoice(doc)
	}

	c.JSON(http.StatusOK, dto.SalesInvoiceListResponse{
		Items:      items,
		TotalCount: int(result.TotalCount),
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
