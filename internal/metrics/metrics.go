// Package metrics provides Prometheus metrics for grouptree
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for grouptree
type Metrics struct {
	// HTTP request metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Tree engine metrics
	TreeOperationsTotal   *prometheus.CounterVec
	TreeOperationDuration *prometheus.HistogramVec
	LoadedTreeNodes       prometheus.Gauge

	// Search metrics
	SearchesTotal prometheus.Counter

	// Session metrics
	SessionsActive prometheus.Gauge
	SessionsStale  prometheus.Gauge

	// Journal metrics
	JournalAppendsTotal prometheus.Counter

	// Server metrics
	ServerUptimeSeconds prometheus.Gauge
	ServerStartTime     time.Time
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		ServerStartTime: time.Now(),
	}

	// HTTP request metrics
	m.HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grouptree_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grouptree_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "grouptree_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Tree engine metrics
	m.TreeOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grouptree_tree_operations_total",
			Help: "Total number of tree operations (toggle, group, save)",
		},
		[]string{"operation", "status"},
	)

	m.TreeOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grouptree_tree_operation_duration_seconds",
			Help:    "Duration of tree operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	m.LoadedTreeNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "grouptree_loaded_tree_nodes",
			Help: "Total number of taxonomy nodes across open sessions",
		},
	)

	// Search metrics
	m.SearchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "grouptree_searches_total",
			Help: "Total number of search queries applied",
		},
	)

	// Session metrics
	m.SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "grouptree_sessions_active",
			Help: "Number of open editing sessions",
		},
	)

	m.SessionsStale = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "grouptree_sessions_stale",
			Help: "Number of sessions whose codes file changed on disk",
		},
	)

	// Journal metrics
	m.JournalAppendsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "grouptree_journal_appends_total",
			Help: "Total number of journaled edits",
		},
	)

	// Server metrics
	m.ServerUptimeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "grouptree_server_uptime_seconds",
			Help: "Server uptime in seconds",
		},
	)

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime periodically updates the server uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.ServerUptimeSeconds.Set(time.Since(m.ServerStartTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request with its status
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordTreeOperation records a tree engine operation
func (m *Metrics) RecordTreeOperation(operation, status string, duration time.Duration) {
	m.TreeOperationsTotal.WithLabelValues(operation, status).Inc()
	m.TreeOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
