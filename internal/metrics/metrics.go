package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// Metrics groups the server's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	reports          *prometheus.CounterVec
	viewers          *prometheus.GaugeVec
	broadcastDropped *prometheus.CounterVec
	broadcasts       prometheus.Counter
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estatus_reports_total",
			Help: "Node reports by ingestion result.",
		}, []string{"result"}),
		viewers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "estatus_viewers",
			Help: "Currently connected viewers.",
		}, []string{"transport"}),
		broadcastDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estatus_broadcast_dropped_total",
			Help: "Messages not delivered because a viewer was gone or too slow.",
		}, []string{"transport"}),
		broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estatus_broadcasts_total",
			Help: "Incremental node updates fanned out to viewers.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estatus_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "estatus_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.reports, m.viewers, m.broadcastDropped, m.broadcasts, m.requests, m.requestDuration)
	return m
}

func (m *Metrics) ReportIngested(result string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(result).Inc()
}

func (m *Metrics) ViewerConnected(transport string) {
	if m == nil {
		return
	}
	m.viewers.WithLabelValues(transport).Inc()
}

func (m *Metrics) ViewerDisconnected(transport string) {
	if m == nil {
		return
	}
	m.viewers.WithLabelValues(transport).Dec()
}

func (m *Metrics) BroadcastDropped(transport string) {
	if m == nil {
		return
	}
	m.broadcastDropped.WithLabelValues(transport).Inc()
}

func (m *Metrics) Broadcast() {
	if m == nil {
		return
	}
	m.broadcasts.Inc()
}

// Middleware records request counts and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
