package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"mediaroll/internal/media"
)

// Metrics bundles prometheus collectors for asset queries and the HTTP API.
type Metrics struct {
	QueriesTotal       *prometheus.CounterVec
	QueryDurationSec   prometheus.Histogram
	RowsFetched        prometheus.Counter
	RowsSkipped        prometheus.Counter
	RequestsTotal      *prometheus.CounterVec
	RequestDurationSec *prometheus.HistogramVec
}

var _ media.Observer = (*Metrics)(nil)

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mediaroll_queries_total",
			Help: "Total number of asset queries by outcome code.",
		}, []string{"code"}),
		QueryDurationSec: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mediaroll_query_duration_seconds",
			Help:    "Asset query duration in seconds, including metadata probes.",
			Buckets: prometheus.DefBuckets,
		}),
		RowsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mediaroll_rows_fetched_total",
			Help: "Total number of raw index rows fetched.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mediaroll_rows_skipped_total",
			Help: "Total number of rows dropped because a requested field could not be derived.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mediaroll_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		RequestDurationSec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mediaroll_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	registry.MustRegister(
		m.QueriesTotal,
		m.QueryDurationSec,
		m.RowsFetched,
		m.RowsSkipped,
		m.RequestsTotal,
		m.RequestDurationSec,
	)

	return m
}

// ObserveQuery records one finished query. An empty code means success.
func (m *Metrics) ObserveQuery(code media.Code, stats media.ScanStats, elapsed time.Duration) {
	label := string(code)
	if label == "" {
		label = "ok"
	}
	m.QueriesTotal.WithLabelValues(label).Inc()
	m.QueryDurationSec.Observe(elapsed.Seconds())
	m.RowsFetched.Add(float64(stats.Fetched))
	m.RowsSkipped.Add(float64(stats.Skipped))
}

// Middleware counts requests by chi route pattern so path parameters do not
// explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		status := strconv.Itoa(wrapped.statusCode)
		route := routePattern(r)
		m.RequestsTotal.WithLabelValues(route, r.Method, status).Inc()
		m.RequestDurationSec.WithLabelValues(route, r.Method, status).Observe(time.Since(startedAt).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "other"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Flush keeps streaming behavior for handlers that require it.
func (rw *statusRecorder) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
