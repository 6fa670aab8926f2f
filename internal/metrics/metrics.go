// Package metrics defines the Prometheus collectors exported by the portal.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recruit"

// Metrics holds every collector. Build one per process with New and share it.
type Metrics struct {
	registry prometheus.Gatherer

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	guardDecisions     *prometheus.CounterVec
	testSubmissions    *prometheus.CounterVec
	activeTestSessions prometheus.Gauge
}

// New creates the collectors and registers them on reg.
// When reg is nil a private registry is used.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Number of portal HTTP requests partitioned by status code, method and route.",
		}, []string{"code", "method", "path"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_milliseconds",
			Help:      "Time spent serving portal requests.",
			Buckets:   []float64{10, 50, 100, 300, 500, 1000, 5000},
		}, []string{"code", "method", "path"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Calls made to backend services partitioned by client, method and status code.",
		}, []string{"client", "method", "code"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of calls made to backend services.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"client", "method"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_decisions_total",
			Help:      "Route guard outcomes partitioned by area and outcome.",
		}, []string{"area", "outcome"}),
		testSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "test_submissions_total",
			Help:      "Assessment submissions partitioned by trigger and result.",
		}, []string{"trigger", "result"}),
		activeTestSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_test_sessions",
			Help:      "Test-taking sessions currently held in memory.",
		}),
	}

	reg.MustRegister(
		m.requests, m.latency,
		m.upstreamRequests, m.upstreamLatency,
		m.guardDecisions, m.testSubmissions, m.activeTestSessions,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		code := strconv.Itoa(ww.Status())
		m.requests.WithLabelValues(code, r.Method, path).Inc()
		m.latency.WithLabelValues(code, r.Method, path).Observe(float64(time.Since(start).Milliseconds()))
	}
	return http.HandlerFunc(fn)
}

// ObserveUpstream records one backend call. code is 0 for transport failures.
func (m *Metrics) ObserveUpstream(client, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	m.upstreamRequests.WithLabelValues(client, method, label).Inc()
	m.upstreamLatency.WithLabelValues(client, method).Observe(elapsed.Seconds())
}

// ObserveGuard records a route guard outcome for an area such as "dashboard".
func (m *Metrics) ObserveGuard(area, outcome string) {
	if m == nil {
		return
	}
	m.guardDecisions.WithLabelValues(area, outcome).Inc()
}

// ObserveSubmission records an assessment submission attempt.
// trigger is "manual" or "auto"; result is "success", "failure" or "suppressed".
func (m *Metrics) ObserveSubmission(trigger, result string) {
	if m == nil {
		return
	}
	m.testSubmissions.WithLabelValues(trigger, result).Inc()
}

// SetActiveTestSessions updates the live session gauge.
func (m *Metrics) SetActiveTestSessions(n int) {
	if m == nil {
		return
	}
	m.activeTestSessions.Set(float64(n))
}
