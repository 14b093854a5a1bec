package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/The-Promised-Neverland/estatus/internal/metrics"
	"github.com/The-Promised-Neverland/estatus/internal/models"
	"github.com/The-Promised-Neverland/estatus/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	transport       = "ws"
	fullSyncTimeout = 10 * time.Second
)

// FullSyncer produces the full_sync message sent to every new viewer.
type FullSyncer interface {
	FullSync(ctx context.Context) (models.Message, error)
}

type Hub struct {
	Viewers map[string]*Viewer
	Mutex   sync.RWMutex
	syncer  FullSyncer
	metrics *metrics.Metrics
}

func NewHub(syncer FullSyncer, m *metrics.Metrics) *Hub {
	return &Hub{
		Viewers: make(map[string]*Viewer),
		syncer:  syncer,
		metrics: m,
	}
}

// Serve takes ownership of conn. The viewer is registered before the full
// sync is computed so no update committed afterwards can be missed; updates
// queue in SendCh until the full sync has been written.
func (h *Hub) Serve(conn *websocket.Conn) {
	v := NewViewer(conn)
	h.register(v)

	ctx, cancel := context.WithTimeout(context.Background(), fullSyncTimeout)
	msg, err := h.syncer.FullSync(ctx)
	cancel()
	if err != nil {
		logger.Log.Error("Failed to build full sync", "viewer", v.ID, "err", err)
		h.drop(v)
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("Failed to marshal full sync", "viewer", v.ID, "err", err)
		h.drop(v)
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		logger.Log.Warn("Failed to send full sync", "viewer", v.ID, "err", err)
		h.drop(v)
		return
	}

	go h.WritePump(v)
	go h.ReadPump(v)
}

func (h *Hub) register(v *Viewer) {
	h.Mutex.Lock()
	h.Viewers[v.ID] = v
	h.Mutex.Unlock()
	h.metrics.ViewerConnected(transport)
	logger.Log.Info("Viewer connected", "viewer", v.ID, "transport", transport)
}

func (h *Hub) unregister(v *Viewer) {
	h.Mutex.Lock()
	_, ok := h.Viewers[v.ID]
	if ok {
		delete(h.Viewers, v.ID)
		v.closeSend()
	}
	h.Mutex.Unlock()
	if ok {
		h.metrics.ViewerDisconnected(transport)
		logger.Log.Info("Viewer disconnected", "viewer", v.ID, "transport", transport)
	}
}

func (h *Hub) drop(v *Viewer) {
	h.unregister(v)
	if v.Conn != nil {
		v.Conn.Close()
	}
}

// Broadcast marshals msg once and offers it to every viewer. A viewer whose
// queue is full is disconnected; the others are unaffected.
func (h *Hub) Broadcast(msg models.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("Failed to marshal broadcast", "type", msg.Type, "err", err)
		return
	}
	var slow []*Viewer
	h.Mutex.RLock()
	for _, v := range h.Viewers {
		select {
		case v.SendCh <- data:
		default:
			slow = append(slow, v)
		}
	}
	h.Mutex.RUnlock()

	for _, v := range slow {
		logger.Log.Warn("Viewer too slow, disconnecting", "viewer", v.ID)
		h.metrics.BroadcastDropped(transport)
		h.drop(v)
	}
}

func (h *Hub) Count() int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()
	return len(h.Viewers)
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.Mutex.RLock()
	viewers := make([]*Viewer, 0, len(h.Viewers))
	for _, v := range h.Viewers {
		viewers = append(viewers, v)
	}
	h.Mutex.RUnlock()
	for _, v := range viewers {
		h.unregister(v)
	}
}
