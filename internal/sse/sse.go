package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/The-Promised-Neverland/estatus/internal/metrics"
	"github.com/The-Promised-Neverland/estatus/internal/models"
	"github.com/The-Promised-Neverland/estatus/pkg/logger"
	"github.com/google/uuid"
)

const (
	transport  = "sse"
	sendBuffer = 100
)

type Connection struct {
	ID          string
	SendCh      chan []byte
	ConnectedAt time.Time
}

// SSEHub fans messages out to server-sent-event streams. A stream that cannot
// keep up is closed; its handler returns and the client reconnects.
type SSEHub struct {
	Connections map[string]*Connection
	Mutex       sync.RWMutex
	metrics     *metrics.Metrics
}

func NewSSEHub(m *metrics.Metrics) *SSEHub {
	return &SSEHub{
		Connections: make(map[string]*Connection),
		metrics:     m,
	}
}

func (h *SSEHub) Connect() *Connection {
	conn := &Connection{
		ID:          uuid.New().String(),
		SendCh:      make(chan []byte, sendBuffer),
		ConnectedAt: time.Now(),
	}
	h.Mutex.Lock()
	h.Connections[conn.ID] = conn
	h.Mutex.Unlock()
	h.metrics.ViewerConnected(transport)
	logger.Log.Info("Viewer connected", "viewer", conn.ID, "transport", transport)
	return conn
}

func (h *SSEHub) Disconnect(id string) {
	h.Mutex.Lock()
	conn, exists := h.Connections[id]
	if exists {
		close(conn.SendCh)
		delete(h.Connections, id)
	}
	h.Mutex.Unlock()
	if exists {
		h.metrics.ViewerDisconnected(transport)
		logger.Log.Info("Viewer disconnected", "viewer", id, "transport", transport)
	}
}

func (h *SSEHub) Broadcast(msg models.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("Failed to marshal SSE message", "type", msg.Type, "err", err)
		return
	}
	var slow []string
	h.Mutex.RLock()
	for id, conn := range h.Connections {
		select {
		case conn.SendCh <- data:
		default:
			slow = append(slow, id)
		}
	}
	h.Mutex.RUnlock()

	for _, id := range slow {
		logger.Log.Warn("SSE stream too slow, closing", "viewer", id)
		h.metrics.BroadcastDropped(transport)
		h.Disconnect(id)
	}
}

func (h *SSEHub) Count() int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()
	return len(h.Connections)
}

// Close ends every open stream.
func (h *SSEHub) Close() {
	h.Mutex.RLock()
	ids := make([]string, 0, len(h.Connections))
	for id := range h.Connections {
		ids = append(ids, id)
	}
	h.Mutex.RUnlock()
	for _, id := range ids {
		h.Disconnect(id)
	}
}
