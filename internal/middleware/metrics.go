package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-route request counts and latency
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers HTTP collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "celulas_http_requests_total",
		Help: "Counts HTTP requests by route label, method, and status.",
	}, []string{"route", "method", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "celulas_http_request_duration_seconds",
		Help:    "HTTP request latency by route label and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	reg.MustRegister(requests, duration)

	return &Metrics{requests: requests, duration: duration}
}

// Handler observes every request passing through
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		r, _ = withRouteInfo(r)
		wrapped := wrapResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		route := RouteLabel(r.Context())
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(wrapped.statusCode)).Inc()
		m.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
