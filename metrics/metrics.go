// Package metrics holds the Prometheus collectors of the service: HTTP
// request latency and the listing engine's timings and decode skips.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// unmatchedRoute labels requests no route matched, so probes of random
// paths cannot grow the label set.
const unmatchedRoute = "unmatched"

var (
	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.3, 1.2, 5},
	}, []string{"route", "method", "status"})

	listingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gigboard_listing_duration_seconds",
		Help:    "Duration of paginated listings, count and window fetch together.",
		Buckets: []float64{0.005, 0.02, 0.1, 0.5, 2},
	}, []string{"listing"})

	listingDecodeSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gigboard_listing_decode_skipped_total",
		Help: "Stored records a listing skipped because they did not decode.",
	}, []string{"listing"})
)

// RegisterDefault registers the runtime, process, HTTP and listing
// collectors with the default registry. Calling it again is a no-op. Any
// other registration failure is fatal.
func RegisterDefault(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for name, c := range map[string]prometheus.Collector{
		"go":                     collectors.NewGoCollector(),
		"process":                collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		"http_request_duration":  requestDuration,
		"listing_duration":       listingDuration,
		"listing_decode_skipped": listingDecodeSkipped,
	} {
		err := prometheus.Register(c)
		var already prometheus.AlreadyRegisteredError
		if err == nil || errors.As(err, &already) {
			continue
		}
		logger.Fatal("metrics registration failed", zap.String("collector", name), zap.Error(err))
	}
}

// ObserveListing records how long one listing took.
func ObserveListing(listing string, d time.Duration) {
	listingDuration.WithLabelValues(listing).Observe(d.Seconds())
}

// ListingDecodeSkipped counts one record skipped by a listing.
func ListingDecodeSkipped(listing string) {
	listingDecodeSkipped.WithLabelValues(listing).Inc()
}

// HTTPMetrics observes every request in http_request_duration_seconds,
// labeled by chi route pattern rather than raw path.
func HTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, max(r.ProtoMajor, 1))

		next.ServeHTTP(ww, r)

		requestDuration.WithLabelValues(
			routeOf(r),
			r.Method,
			strconv.Itoa(statusOf(ww.Status())),
		).Observe(time.Since(start).Seconds())
	})
}

// routeOf reads the matched pattern after the router has served r.
func routeOf(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return unmatchedRoute
}

// statusOf maps an unwritten status to 200 and anything outside the HTTP
// range to 500.
func statusOf(code int) int {
	switch {
	case code == 0:
		return http.StatusOK
	case code < 100 || code > 599:
		return http.StatusInternalServerError
	default:
		return code
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
