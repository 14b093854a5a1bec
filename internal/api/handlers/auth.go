package handlers

import (
	"errors"
	"net/http"

	"github.com/The-Promised-Neverland/estatus/internal/api/middleware"
	"github.com/The-Promised-Neverland/estatus/internal/service"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}
	token, err := h.Auth.Login(c.Request.Context(), req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Wrong password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.Auth.TTL().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
