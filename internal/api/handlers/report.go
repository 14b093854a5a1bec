package handlers

import (
	"errors"
	"net/http"

	"github.com/The-Promised-Neverland/estatus/internal/models"
	"github.com/The-Promised-Neverland/estatus/internal/service"
	"github.com/gin-gonic/gin"
)

// Report accepts one node self-report.
func (h *Handler) Report(c *gin.Context) {
	var report models.Report
	if err := c.ShouldBindJSON(&report); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report: " + err.Error()})
		return
	}
	if err := h.Ingestor.Ingest(c.Request.Context(), &report); err != nil {
		if errors.Is(err, service.ErrMissingID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing ID"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
