package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/The-Promised-Neverland/estatus/internal/models"
	"github.com/gorilla/websocket"
)

type staticSyncer struct {
	msg models.Message
}

func (s staticSyncer) FullSync(context.Context) (models.Message, error) {
	return s.msg, nil
}

func newTestServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Serve(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type envelope struct {
	Type string          `json:"type"`
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func waitForViewers(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Count() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d viewers, have %d", n, h.Count())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFullSyncThenUpdates(t *testing.T) {
	snap := &models.LiveSnapshot{ID: "n1", Name: "Hong Kong", Tags: []models.Tag{}, PingData: []models.PingResult{}}
	h := NewHub(staticSyncer{msg: models.FullSync(map[string]*models.LiveSnapshot{"n1": snap})}, nil)
	srv := newTestServer(t, h)

	conn := dial(t, srv)
	first := readEnvelope(t, conn)
	if first.Type != models.MsgFullSync {
		t.Fatalf("expected full_sync first, got %s", first.Type)
	}
	var all map[string]models.LiveSnapshot
	if err := json.Unmarshal(first.Data, &all); err != nil {
		t.Fatalf("decode full sync: %v", err)
	}
	if all["n1"].Name != "Hong Kong" {
		t.Fatalf("unexpected full sync %s", first.Data)
	}

	waitForViewers(t, h, 1)
	h.Broadcast(models.UpdateSingle("n1", snap))
	update := readEnvelope(t, conn)
	if update.Type != models.MsgUpdateSingle || update.ID != "n1" {
		t.Fatalf("unexpected update %+v", update)
	}
}

func TestDisconnectedViewerDoesNotBlockOthers(t *testing.T) {
	h := NewHub(staticSyncer{msg: models.FullSync(map[string]*models.LiveSnapshot{})}, nil)
	srv := newTestServer(t, h)

	a := dial(t, srv)
	b := dial(t, srv)
	readEnvelope(t, a)
	readEnvelope(t, b)
	waitForViewers(t, h, 2)

	a.Close()
	waitForViewers(t, h, 1)

	h.Broadcast(models.UpdateSingle("n1", &models.LiveSnapshot{ID: "n1"}))
	if env := readEnvelope(t, b); env.Type != models.MsgUpdateSingle {
		t.Fatalf("expected update on remaining viewer, got %s", env.Type)
	}
}

func TestSlowViewerIsPruned(t *testing.T) {
	h := NewHub(staticSyncer{}, nil)
	slow := &Viewer{ID: "slow", SendCh: make(chan []byte, 1)}
	fast := &Viewer{ID: "fast", SendCh: make(chan []byte, 4)}
	h.Viewers[slow.ID] = slow
	h.Viewers[fast.ID] = fast
	slow.SendCh <- []byte("backlog")

	h.Broadcast(models.UpdateSingle("n1", &models.LiveSnapshot{ID: "n1"}))

	if h.Count() != 1 {
		t.Fatalf("expected slow viewer pruned, have %d viewers", h.Count())
	}
	if len(fast.SendCh) != 1 {
		t.Fatalf("expected fast viewer to receive the update")
	}
	<-slow.SendCh
	if _, ok := <-slow.SendCh; ok {
		t.Fatalf("expected slow viewer queue closed")
	}
}
