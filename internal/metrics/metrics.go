package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the API.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Domain metrics.
	DeactivationsTotal  *prometheus.CounterVec
	CascadeDeletedTotal *prometheus.CounterVec
	AuthFailuresTotal   *prometheus.CounterVec

	ServerStartTime prometheus.Gauge
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todo_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "todo_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		DeactivationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todo_deactivations_total",
			Help: "Total number of user deactivations by mode and result.",
		}, []string{"mode", "result"}),

		CascadeDeletedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todo_cascade_deleted_rows_total",
			Help: "Rows soft-deleted by project and team cascades.",
		}, []string{"entity"}),

		AuthFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todo_auth_failures_total",
			Help: "Total number of authentication failures.",
		}, []string{"reason"}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "todo_server_start_time_seconds",
			Help: "Unix timestamp when the server started.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DeactivationsTotal,
		m.CascadeDeletedTotal,
		m.AuthFailuresTotal,
		m.ServerStartTime,
	)

	m.ServerStartTime.Set(float64(time.Now().Unix()))

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterDBStatsCollector exposes connection pool gauges.
func (m *Metrics) RegisterDBStatsCollector(statFunc DBStatsFunc) {
	m.registry.MustRegister(NewDBStatsCollector(statFunc))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDeactivation counts one deactivation attempt. A nil receiver is a
// no-op so services can run without metrics.
func (m *Metrics) ObserveDeactivation(mode, result string) {
	if m == nil {
		return
	}
	m.DeactivationsTotal.WithLabelValues(mode, result).Inc()
}

// AddCascadeDeleted adds soft-deleted rows of an entity kind.
func (m *Metrics) AddCascadeDeleted(entity string, rows int64) {
	if m == nil || rows <= 0 {
		return
	}
	m.CascadeDeletedTotal.WithLabelValues(entity).Add(float64(rows))
}

// IncAuthFailure increments the auth failure counter.
func (m *Metrics) IncAuthFailure(reason string) {
	if m == nil {
		return
	}
	m.AuthFailuresTotal.WithLabelValues(reason).Inc()
}

// Middleware records request counts and latencies by route pattern.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		pattern := c.FullPath()
		if pattern == "" {
			pattern = "unmatched"
		}
		method := c.Request.Method

		m.HTTPRequestsTotal.WithLabelValues(method, pattern, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, pattern).Observe(time.Since(start).Seconds())
	}
}
