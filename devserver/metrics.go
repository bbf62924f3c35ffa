// ABOUTME: Prometheus instrumentation for the reference backend
// ABOUTME: HTTP request counters/histograms plus lead and note domain counters
package devserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	activeConnections   prometheus.Gauge
	leadsCreated        prometheus.Counter
	notesAdded          prometheus.Counter
	statusChanges       *prometheus.CounterVec
}

// newMetrics registers the collectors on reg. Each server owns its registry
// so several servers can live in one process.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		activeConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Number of active HTTP connections",
			},
		),
		leadsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "leads_created_total",
				Help: "Total number of leads created",
			},
		),
		notesAdded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lead_notes_added_total",
				Help: "Total number of notes added to leads",
			},
		),
		statusChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_status_changes_total",
				Help: "Total number of lead status transitions, by new status",
			},
			[]string{"status"},
		),
	}
}

func (m *metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.activeConnections.Inc()
		defer m.activeConnections.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Label by route pattern so ids don't explode the cardinality.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
