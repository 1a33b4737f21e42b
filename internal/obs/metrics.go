package obs

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Shared HTTP metrics.
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

// Auth domain metrics.
var (
	// AuthDecisions counts forward-auth outcomes by "allowed" / "redirected".
	AuthDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_decisions_total",
			Help: "Forward-auth check outcomes.",
		},
		[]string{"outcome"},
	)

	// CodesIssued counts one-time codes handed to the mailer.
	CodesIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_codes_issued_total",
		Help: "One-time codes issued after password verification.",
	})

	// CodeValidations counts consuming validation attempts by "ok" / "rejected".
	CodeValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_code_validations_total",
			Help: "One-time code validation attempts.",
		},
		[]string{"result"},
	)

	// MailFailures counts failed code deliveries (each rolls back an issued code).
	MailFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_mail_failures_total",
		Help: "Failed one-time code mail dispatches.",
	})
)

var registerOnce sync.Once

// Init registers all metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight, httpRequestsTotal, httpRequestDuration,
			AuthDecisions, CodesIssued, CodeValidations, MailFailures,
		)
	})
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument wraps a handler with RPS/latency/in-flight measurement.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
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

// statusWriter captures the response code written by the wrapped handler.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
