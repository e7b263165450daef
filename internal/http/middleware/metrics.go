package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_mutations_total",
			Help: "Total number of lead mutations",
		},
		[]string{"operation"},
	)

	stageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stage_transitions_total",
			Help: "Total number of stage status transitions",
		},
		[]string{"to_status"},
	)
)

// Metrics records request counts and latencies per route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		// Route patterns keep label cardinality bounded when IDs appear in paths
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// RecordLeadMutation counts a write operation on the lead catalog.
func RecordLeadMutation(operation string) {
	leadMutations.WithLabelValues(operation).Inc()
}

// RecordStageTransition counts a stage moving to the given status.
func RecordStageTransition(toStatus string) {
	stageTransitions.WithLabelValues(toStatus).Inc()
}
