package ws

import (
	"time"

	"github.com/The-Promised-Neverland/estatus/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

// ReadPump only watches for pongs and the close frame; viewers never send
// anything the server acts on.
func (h *Hub) ReadPump(v *Viewer) {
	defer h.drop(v)
	v.Conn.SetReadLimit(maxMessageSize)
	v.Conn.SetReadDeadline(time.Now().Add(pongWait))
	v.Conn.SetPongHandler(func(string) error {
		v.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := v.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.Log.Warn("Viewer read error", "viewer", v.ID, "err", err)
			}
			return
		}
	}
}

func (h *Hub) WritePump(v *Viewer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		v.Conn.Close()
	}()
	for {
		select {
		case data, ok := <-v.SendCh:
			v.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				v.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Log.Warn("Failed to write to viewer", "viewer", v.ID, "err", err)
				return
			}
		case <-ticker.C:
			v.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
