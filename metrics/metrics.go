// Package metrics provides Prometheus metrics for the RPC backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orange_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orange_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Authentication metrics
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orange_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"status"}, // "success", "invalid_credentials", "error"
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orange_active_sessions",
			Help: "Number of currently active sessions",
		},
	)

	// Dispatch metrics
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orange_rpc_calls_total",
			Help: "Total number of RPC calls by object and outcome",
		},
		[]string{"object", "status"}, // status: "ok", "not_found", "unauthorized", "forbidden", "error"
	)

	RPCCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orange_rpc_call_duration_seconds",
			Help:    "RPC call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"object"},
	)

	ACLDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orange_acl_denials_total",
			Help: "Total number of access-check denials",
		},
		[]string{"object"},
	)
)

// RegisterMetrics ensures all metrics are registered with Prometheus.
// This function is idempotent and safe to call multiple times.
func RegisterMetrics() {
	// All metrics are automatically registered via promauto.
}
