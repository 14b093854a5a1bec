package handlers

import (
	"errors"
	"net/http"

	"github.com/The-Promised-Neverland/estatus/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) PublicConfig(c *gin.Context) {
	cfg, err := h.Settings.Public(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type settingRequest struct {
	Value *string `json:"value"`
}

func (h *Handler) UpdateSetting(c *gin.Context) {
	var req settingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing value"})
		return
	}
	err := h.Settings.Update(c.Request.Context(), c.Param("key"), *req.Value)
	switch {
	case errors.Is(err, service.ErrUnknownSetting), errors.Is(err, service.ErrInvalidSetting):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
