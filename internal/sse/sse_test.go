package sse

import (
	"encoding/json"
	"testing"

	"github.com/The-Promised-Neverland/estatus/internal/models"
)

func TestBroadcastReachesEveryStream(t *testing.T) {
	h := NewSSEHub(nil)
	a := h.Connect()
	b := h.Connect()

	h.Broadcast(models.UpdateSingle("n1", &models.LiveSnapshot{ID: "n1"}))

	for _, conn := range []*Connection{a, b} {
		select {
		case data := <-conn.SendCh:
			var msg struct {
				Type string `json:"type"`
				ID   string `json:"id"`
			}
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if msg.Type != models.MsgUpdateSingle || msg.ID != "n1" {
				t.Fatalf("unexpected message %s", data)
			}
		default:
			t.Fatalf("stream %s got nothing", conn.ID)
		}
	}
}

func TestSlowStreamIsClosed(t *testing.T) {
	h := NewSSEHub(nil)
	slow := h.Connect()
	fast := h.Connect()
	for i := 0; i < sendBuffer; i++ {
		slow.SendCh <- []byte("x")
	}

	h.Broadcast(models.UpdateSingle("n1", &models.LiveSnapshot{ID: "n1"}))

	if h.Count() != 1 {
		t.Fatalf("expected one stream left, have %d", h.Count())
	}
	if len(fast.SendCh) != 1 {
		t.Fatalf("fast stream missed the update")
	}
	h.Disconnect(slow.ID)
	h.Close()
	if h.Count() != 0 {
		t.Fatalf("expected no streams after close")
	}
}
