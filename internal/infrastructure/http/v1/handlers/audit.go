package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/core/id"
	"pharmabill/internal/infrastructure/storage/postgres"
)

// AuditHistoryHandler serves the audit trail for a document type.
type AuditHistoryHandler struct {
	*BaseHandler
	audit      *postgres.AuditService
	entityType string
}

// NewAuditHistoryHandler creates a history handler bound to one
// document type (e.g. "SalesInvoice").
func NewAuditHistoryHandler(base *BaseHandler, audit *postgres.AuditService, entityType string) *AuditHistoryHandler {
	return &AuditHistoryHandler{
		BaseHandler: base,
		audit:       audit,
		entityType:  entityType,
	}
}

type auditEntryResponse struct {
	Action    string          `json:"action"`
	UserID    string          `json:"userId,omitempty"`
	Changes   json.RawMessage `json:"changes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// History handles GET /:id/history.
func (h *AuditHistoryHandler) History(c *gin.Context) {
	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").WithDetail("id", c.Param("id")))
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	entries, err := h.audit.GetEntityHistory(c.Request.Context(), h.entityType, entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, auditEntryResponse{
			Action:    string(e.Action),
			UserID:    e.UserID,
			Changes:   e.Changes,
			CreatedAt: e.CreatedAt,
		})
	}

	h.OK(c, resp)
}
