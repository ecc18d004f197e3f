package handlers

import (
	"net/http"

	"gira/internal/models"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs: ?entity=&entity_id=&limit=, по умолчанию последние 200.
func (h *Handler) ListAuditLogs(c *gin.Context) {
	var f models.AuditFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.badRequest(c, err)
		return
	}

	logs, err := h.tracker.AuditLog(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"logs": logs})
}
