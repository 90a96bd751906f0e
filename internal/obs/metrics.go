package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics shared by every route.
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Session metrics: outcomes of the auth endpoints plus throttle pressure.
var (
	authLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by result.",
		},
		[]string{"result"},
	)

	authRefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_refreshes_total",
			Help: "Token refresh attempts by result.",
		},
		[]string{"result"},
	)

	authRateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_rate_limited_total",
		Help: "Login attempts rejected by the login rate limiter.",
	})

	authCredentialMigrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_credential_migrations_total",
		Help: "Legacy credentials rewritten to hashed form during login.",
	})
)

// Init registers all metrics with the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		authLoginsTotal, authRefreshesTotal,
		authRateLimitedTotal, authCredentialMigrationsTotal,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveLogin records a login attempt outcome.
func ObserveLogin(result string) {
	authLoginsTotal.WithLabelValues(result).Inc()
}

// ObserveRefresh records a refresh attempt outcome.
func ObserveRefresh(result string) {
	authRefreshesTotal.WithLabelValues(result).Inc()
}

// ObserveRateLimited records a throttled login attempt.
func ObserveRateLimited() {
	authRateLimitedTotal.Inc()
}

// ObserveCredentialMigration records a legacy-to-hash credential rewrite.
func ObserveCredentialMigration() {
	authCredentialMigrationsTotal.Inc()
}

// Instrument wraps a handler with in-flight, count and latency metrics.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// CanonicalPath collapses parameterized routes so metric label cardinality
// stays bounded. The auth routes are fixed strings already; user routes
// carry an id segment.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	parts := strings.Split(path, "/")
	// /api/v1/users/:id and /api/v1/users/:id/...
	if len(parts) >= 5 && parts[1] == "api" && parts[2] == "v1" && parts[3] == "users" && parts[4] != "" {
		parts[4] = ":id"
		return strings.Join(parts, "/")
	}
	return path
}

// statusWriter captures the response code for metric labels.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
