package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/domain/importer"
)

// Uploads above this size are rejected before parsing.
const maxImportSize = 20 << 20 // 20 MiB

// StockImportHandler accepts spreadsheet uploads of opening stock.
type StockImportHandler struct {
	*BaseHandler
	importer *importer.Importer
}

// NewStockImportHandler creates a new stock import handler.
func NewStockImportHandler(base *BaseHandler, imp *importer.Importer) *StockImportHandler {
	return &StockImportHandler{
		BaseHandler: base,
		importer:    imp,
	}
}

// Import handles POST /registers/stock/import - multipart upload with a
// "file" part. dryRun=true reconciles without writing and reports what
// each row would do.
func (h *StockImportHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("multipart field 'file' is required"))
		return
	}
	if fileHeader.Size > maxImportSize {
		h.Error(c, apperror.NewValidation("file exceeds maximum import size"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.Error(c, apperror.NewValidation("cannot read uploaded file").WithCause(err))
		return
	}
	defer file.Close()

	dryRun := c.Query("dryRun") == "true"

	report, err := h.importer.ImportReader(ctx, file, dryRun)
	if err != nil {
		// A partially applied import still returns the rows it processed.
		if report != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  err.Error(),
				"report": report,
			})
			return
		}
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
