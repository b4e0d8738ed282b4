package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "onco_portal"

// MetricsCollector handles Prometheus metrics collection. Each collector owns
// its registry so several services (or tests) can coexist in one process.
type MetricsCollector struct {
	serviceName string
	registry    *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	gridBuildsTotal     *prometheus.CounterVec
	gridBuildDuration   prometheus.Histogram
	cacheLookupsTotal   *prometheus.CounterVec
	fixtureLookups      *prometheus.CounterVec
	exportsTotal        prometheus.Counter
	panicsTotal         prometheus.Counter
	systemErrors        *prometheus.CounterVec
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(serviceName string) *MetricsCollector {
	labels := prometheus.Labels{"service": serviceName}

	m := &MetricsCollector{
		serviceName: serviceName,
		registry:    prometheus.NewRegistry(),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: labels,
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Name:        "http_request_duration_seconds",
				Help:        "Duration of HTTP requests in seconds",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"method", "route"},
		),
		gridBuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "calendar_grid_builds_total",
				Help:        "Total number of month grids projected",
				ConstLabels: labels,
			},
			[]string{"role"},
		),
		gridBuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Name:        "calendar_grid_build_duration_seconds",
				Help:        "Duration of month grid projection in seconds",
				Buckets:     []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
				ConstLabels: labels,
			},
		),
		cacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "calendar_cache_lookups_total",
				Help:        "Month view cache lookups by result",
				ConstLabels: labels,
			},
			[]string{"result"},
		),
		fixtureLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "fixture_lookups_total",
				Help:        "Fixture repository lookups by resource and outcome",
				ConstLabels: labels,
			},
			[]string{"resource", "outcome"},
		),
		exportsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "calendar_exports_total",
				Help:        "Total number of iCalendar exports",
				ConstLabels: labels,
			},
		),
		panicsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "render_fallbacks_total",
				Help:        "Requests answered by the fallback renderer after a panic",
				ConstLabels: labels,
			},
		),
		systemErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "system_errors_total",
				Help:        "Total number of system errors",
				ConstLabels: labels,
			},
			[]string{"error_type", "component"},
		),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.gridBuildsTotal,
		m.gridBuildDuration,
		m.cacheLookupsTotal,
		m.fixtureLookups,
		m.exportsTotal,
		m.panicsTotal,
		m.systemErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the collector's registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records HTTP request metrics
func (m *MetricsCollector) RecordHTTPRequest(method, route, statusCode string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordGridBuild records a month grid projection
func (m *MetricsCollector) RecordGridBuild(role string, duration time.Duration) {
	m.gridBuildsTotal.WithLabelValues(role).Inc()
	m.gridBuildDuration.Observe(duration.Seconds())
}

// RecordCacheLookup records a month view cache hit or miss
func (m *MetricsCollector) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordFixtureLookup records a repository read
func (m *MetricsCollector) RecordFixtureLookup(resource string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.fixtureLookups.WithLabelValues(resource, outcome).Inc()
}

// RecordExport records an iCalendar export
func (m *MetricsCollector) RecordExport() {
	m.exportsTotal.Inc()
}

// RecordFallback records a request rescued by the fallback renderer
func (m *MetricsCollector) RecordFallback() {
	m.panicsTotal.Inc()
}

// RecordSystemError records system error metrics
func (m *MetricsCollector) RecordSystemError(errorType, component string) {
	m.systemErrors.WithLabelValues(errorType, component).Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// HTTPMiddleware creates middleware for HTTP request metrics
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := newStatusRecorder(w)
		next.ServeHTTP(wrapper, r)

		m.RecordHTTPRequest(r.Method, RouteName(r), strconv.Itoa(wrapper.statusCode), time.Since(start))
	})
}
