package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const sendBuffer = 100

// Viewer is one connected websocket dashboard.
type Viewer struct {
	ID          string
	Conn        *websocket.Conn
	ConnectedAt time.Time
	SendCh      chan []byte
	closeOnce   sync.Once
}

func NewViewer(conn *websocket.Conn) *Viewer {
	return &Viewer{
		ID:          uuid.New().String(),
		Conn:        conn,
		ConnectedAt: time.Now(),
		SendCh:      make(chan []byte, sendBuffer),
	}
}

func (v *Viewer) closeSend() {
	v.closeOnce.Do(func() { close(v.SendCh) })
}
