package handlers

import (
	"errors"
	"net/http"

	"github.com/The-Promised-Neverland/estatus/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) GetServer(c *gin.Context) {
	snap, err := h.Snapshots.Build(c.Request.Context(), c.Param("id"))
	if errors.Is(err, service.ErrNodeUnknown) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Server not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) ServerHistory(c *gin.Context) {
	points, err := h.History.Query(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, points)
}
