package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for expectrd.
type Metrics struct {
	// Session metrics
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter

	// Expect metrics
	ExpectTotal    *prometheus.CounterVec
	ExpectDuration prometheus.Histogram

	// I/O metrics
	BytesSent prometheus.Counter

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates a metrics collector registered against reg. A nil reg uses
// the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "expectrd_sessions_active",
				Help: "Number of live expect sessions",
			},
		),
		SessionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "expectrd_sessions_total",
				Help: "Total number of sessions created",
			},
		),
		ExpectTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expectrd_expect_total",
				Help: "Total number of expect waits by result",
			},
			[]string{"result"},
		),
		ExpectDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "expectrd_expect_duration_seconds",
				Help:    "Expect wait duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
		BytesSent: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "expectrd_bytes_sent_total",
				Help: "Total bytes sent to subprocess input",
			},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expectrd_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "expectrd_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
	}
}

// Expect result labels.
const (
	ResultMatched = "matched"
	ResultTimeout = "timeout"
	ResultError   = "error"
)

// ObserveExpect records one expect wait outcome and its duration.
func (m *Metrics) ObserveExpect(result string, d time.Duration) {
	m.ExpectTotal.WithLabelValues(result).Inc()
	m.ExpectDuration.Observe(d.Seconds())
}

// Middleware returns a gin middleware recording HTTP request metrics.
func Middleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}
