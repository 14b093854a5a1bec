package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/The-Promised-Neverland/estatus/internal/sse"
	"github.com/The-Promised-Neverland/estatus/internal/ws"
	"github.com/The-Promised-Neverland/estatus/pkg/logger"
	"github.com/gin-gonic/gin"
)

const keepAlivePeriod = 30 * time.Second

type SSEHandler struct {
	Hub    *sse.SSEHub
	Syncer ws.FullSyncer
}

func NewSSEHandler(hub *sse.SSEHub, syncer ws.FullSyncer) *SSEHandler {
	return &SSEHandler{Hub: hub, Syncer: syncer}
}

// StreamHandler registers the stream first, writes the full sync, then
// relays queued updates until the client goes away.
func (ssh *SSEHandler) StreamHandler(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	conn := ssh.Hub.Connect()
	defer ssh.Hub.Disconnect(conn.ID)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	msg, err := ssh.Syncer.FullSync(ctx)
	cancel()
	if err != nil {
		logger.Log.Error("Failed to build full sync", "viewer", conn.ID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("Failed to marshal full sync", "viewer", conn.ID, "err", err)
		return
	}
	c.Status(http.StatusOK)
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	c.Writer.Flush()

	ticker := time.NewTicker(keepAlivePeriod)
	defer ticker.Stop()
	for {
		select {
		case data, ok := <-conn.SendCh:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", data)
			c.Writer.Flush()
		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}
