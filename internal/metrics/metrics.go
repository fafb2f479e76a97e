package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"code", "method", "path"},
	)
	httpRequestsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current Number of HTTP requests being processed.",
		},
	)

	// Change feed / reconciliation instrumentation.

	FeedEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_events_total",
			Help: "Change feed notifications delivered to handlers.",
		},
		[]string{"collection", "operation"},
	)

	FeedHandlerFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_handler_failures_total",
			Help: "Change feed notifications discarded or failed in a handler.",
		},
		[]string{"collection"},
	)

	FeedReconnectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_reconnects_total",
			Help: "Times a collection's feed subscription was re-established.",
		},
		[]string{"collection"},
	)

	CartsReconciledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carts_reconciled_total",
			Help: "Cart rewrites performed by the reconciler.",
		},
		[]string{"reason"},
	)

	StockRedistributionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_redistributions_total",
			Help: "Oversold-stock redistributions across competing carts.",
		},
	)
)

func init() {
	if err := prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		slog.Debug("ProcessCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}

	if err := prometheus.Register(collectors.NewGoCollector()); err != nil {
		slog.Debug("GoCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}
}

// wrapper around http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Wildcard names used by the router. Substituting them back keeps the
// path label bounded to route patterns instead of one value per URL.
var routeWildcards = []string{"brandCode", "modelCode", "categoryCode", "productCode", "id"}

func requestPattern(r *http.Request) string {
	path := r.URL.Path

	if p := r.PathValue("..."); p != "" {
		return path[:len(path)-len(p)] + "{...}"
	}

	for _, name := range routeWildcards {
		value := r.PathValue(name)
		if value == "" {
			continue
		}

		path = strings.Replace(path, "/"+value, "/{"+name+"}", 1)
	}

	return path
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()
		httpRequestsInFlight.Inc()

		rw := newResponseWriter(w)

		pathPattern := requestPattern(r)

		defer func() {

			duration := time.Since(start)
			statusCodeStr := strconv.Itoa(rw.statusCode)

			httpRequestsTotal.WithLabelValues(statusCodeStr, r.Method, pathPattern).Inc()
			httpRequestsDuration.WithLabelValues(r.Method, pathPattern).Observe(duration.Seconds())
			httpRequestsInFlight.Dec()

		}()

		next.ServeHTTP(rw, r)

	})
}

// http.Handler for the Prometheus /metrics endpoint
func Handler() http.Handler {

	return promhttp.Handler()
}
