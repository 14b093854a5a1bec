package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCollectors(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ReportIngested(ResultOK)
	m.ReportIngested(ResultOK)
	m.ReportIngested(ResultRejected)
	if got := testutil.ToFloat64(m.reports.WithLabelValues(ResultOK)); got != 2 {
		t.Fatalf("expected 2 ok reports, got %f", got)
	}

	m.ViewerConnected("ws")
	m.ViewerConnected("ws")
	m.ViewerDisconnected("ws")
	if got := testutil.ToFloat64(m.viewers.WithLabelValues("ws")); got != 1 {
		t.Fatalf("expected 1 ws viewer, got %f", got)
	}

	m.BroadcastDropped("sse")
	if got := testutil.ToFloat64(m.broadcastDropped.WithLabelValues("sse")); got != 1 {
		t.Fatalf("expected 1 dropped sse message, got %f", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ReportIngested(ResultFailed)
	m.ViewerConnected("ws")
	m.Broadcast()
}

func TestMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/server/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/server/abc", nil))

	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/server/:id", "204")); got != 1 {
		t.Fatalf("expected request counted under route template, got %f", got)
	}
}
