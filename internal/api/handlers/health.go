package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/The-Promised-Neverland/estatus/internal/models"
	"github.com/The-Promised-Neverland/estatus/pkg/system"
	"github.com/gin-gonic/gin"
)

func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	health := models.HealthCheck{
		Status: "Healthy",
		Uptime: system.Uptime(),
		Store:  "ok",
	}
	status := http.StatusOK
	if err := h.Store.Ping(ctx); err != nil {
		health.Status = "Degraded"
		health.Store = err.Error()
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, models.Message{Type: models.MsgHealthCheck, Data: health})
}
