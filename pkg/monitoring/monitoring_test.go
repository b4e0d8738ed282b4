package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/medrex/onco-portal/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRequestLogger is a mock implementation of RequestLogger
type MockRequestLogger struct {
	mock.Mock
}

func (m *MockRequestLogger) HTTPRequest(ctx context.Context, method, path, userAgent, clientIP string, statusCode int, duration int64, details map[string]interface{}) {
	m.Called(ctx, method, path, statusCode, details)
}

type staticFixtures struct {
	counts map[string]int
}

func (s staticFixtures) Version() string        { return "abc123" }
func (s staticFixtures) Counts() map[string]int { return s.counts }

type fallbackFunc func(w http.ResponseWriter, r *http.Request, recovered interface{})

func (f fallbackFunc) RenderFallback(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	f(w, r, recovered)
}

func newTestStack(t *testing.T, log RequestLogger) (*MonitoringMiddleware, *MetricsCollector) {
	t.Helper()
	metrics := NewMetricsCollector("test")
	tracing, err := NewTracingManager(TracingConfig{})
	require.NoError(t, err)
	return NewMonitoringMiddleware(metrics, tracing, log), metrics
}

func TestHealthManager_Aggregates(t *testing.T) {
	hm := NewHealthManager("portal", "1.0.0")
	hm.RegisterChecker("fixtures", NewFixtureHealthChecker(staticFixtures{counts: map[string]int{"patients": 3}}))
	hm.RegisterChecker("cache", NewCustomHealthChecker(func(ctx context.Context) HealthCheck {
		return HealthCheck{Status: HealthStatusDegraded, Message: "cold"}
	}))

	report := hm.CheckHealth(context.Background())

	assert.Equal(t, HealthStatusDegraded, report.Status)
	require.Len(t, report.Checks, 2)
	assert.Equal(t, "cache", report.Checks[0].Name)
	assert.Equal(t, "fixtures", report.Checks[1].Name)
	assert.Equal(t, "abc123", report.Checks[1].Details["version"])
	assert.Equal(t, 1, report.Summary["healthy"])
	assert.Equal(t, 1, report.Summary["degraded"])
}

func TestHealthManager_HTTPHandler(t *testing.T) {
	tests := []struct {
		name   string
		source FixtureSource
		want   int
		status HealthStatus
	}{
		{name: "loaded", source: staticFixtures{counts: map[string]int{"patients": 1}}, want: http.StatusOK, status: HealthStatusHealthy},
		{name: "empty", source: staticFixtures{counts: map[string]int{}}, want: http.StatusOK, status: HealthStatusDegraded},
		{name: "missing", source: nil, want: http.StatusServiceUnavailable, status: HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hm := NewHealthManager("portal", "1.0.0")
			hm.RegisterChecker("fixtures", NewFixtureHealthChecker(tt.source))

			rec := httptest.NewRecorder()
			hm.HTTPHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.want, rec.Code)
			var report HealthReport
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
			assert.Equal(t, tt.status, report.Status)
		})
	}
}

func TestHealthManager_TimeoutReachesChecker(t *testing.T) {
	hm := NewHealthManager("portal", "1.0.0")
	hm.SetTimeout(10 * time.Millisecond)
	hm.RegisterChecker("slow", NewCustomHealthChecker(func(ctx context.Context) HealthCheck {
		<-ctx.Done()
		return HealthCheck{Status: HealthStatusUnhealthy, Message: ctx.Err().Error()}
	}))

	report := hm.CheckHealth(context.Background())
	assert.Equal(t, HealthStatusUnhealthy, report.Status)
	assert.Equal(t, context.DeadlineExceeded.Error(), report.Checks[0].Message)
}

func TestMetricsCollector_RecordsAndServes(t *testing.T) {
	m := NewMetricsCollector("test")

	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)
	m.RecordGridBuild("patient", time.Millisecond)
	m.RecordExport()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.cacheLookupsTotal.WithLabelValues("miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.gridBuildsTotal.WithLabelValues("patient")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.exportsTotal))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "onco_portal_calendar_cache_lookups_total")
}

func TestMetricsCollector_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetricsCollector("a")
		NewMetricsCollector("b")
	})
}

func TestHTTPMiddleware_RequestIDAndLogging(t *testing.T) {
	log := new(MockRequestLogger)
	mm, metrics := newTestStack(t, log)

	log.On("HTTPRequest", mock.Anything, http.MethodGet, "/api/v1/patients/p-1", http.StatusNotFound, mock.MatchedBy(func(d map[string]interface{}) bool {
		return d["route"] == "/api/v1/patients/{id}"
	})).Return()

	var seenID string
	router := mux.NewRouter()
	router.Use(mm.HTTPMiddleware)
	router.HandleFunc("/api/v1/patients/{id}", func(w http.ResponseWriter, r *http.Request) {
		seenID = logger.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/patients/p-1", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, seenID)
	assert.Equal(t, seenID, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/api/v1/patients/{id}", "404")))
	log.AssertExpectations(t)
}

func TestHTTPMiddleware_KeepsIncomingRequestID(t *testing.T) {
	mm, _ := newTestStack(t, logger.Discard())

	handler := mm.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRecoveryMiddleware_RendersFallback(t *testing.T) {
	mm, metrics := newTestStack(t, logger.Discard())

	var got interface{}
	renderer := fallbackFunc(func(w http.ResponseWriter, r *http.Request, recovered interface{}) {
		got = recovered
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "fallback")
	})

	handler := mm.RecoveryMiddleware(renderer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("grid exploded")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/calendar/month", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "fallback", rec.Body.String())
	assert.Equal(t, "grid exploded", got)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.panicsTotal))
}

func TestRecoveryMiddleware_SkipsFallbackAfterWrite(t *testing.T) {
	mm, _ := newTestStack(t, logger.Discard())

	called := false
	renderer := fallbackFunc(func(w http.ResponseWriter, r *http.Request, recovered interface{}) {
		called = true
	})

	handler := mm.RecoveryMiddleware(renderer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "partial")
		panic("late failure")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, called)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestTracingManager_DisabledIsNoop(t *testing.T) {
	tm, err := NewTracingManager(TracingConfig{})
	require.NoError(t, err)
	assert.False(t, tm.Enabled())

	ctx, span := tm.StartSpan(context.Background(), SpanCalendarMonth)
	span.End()
	assert.Empty(t, TraceIDFromContext(ctx))
	assert.NoError(t, tm.Shutdown(context.Background()))
}

func TestTracingManager_PropagatesIncomingContext(t *testing.T) {
	tm, err := NewTracingManager(TracingConfig{})
	require.NoError(t, err)

	headers := http.Header{}
	headers.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	ctx := tm.ExtractTraceContext(context.Background(), headers)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", TraceIDFromContext(ctx))

	out := http.Header{}
	tm.InjectTraceContext(ctx, out)
	assert.True(t, strings.HasPrefix(out.Get("traceparent"), "00-4bf92f3577b34da6a3ce929d0e0e4736-"))
}

func TestTracingManager_UnsupportedExporter(t *testing.T) {
	_, err := NewTracingManager(TracingConfig{Enabled: true, Exporter: "jaeger"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported exporter")
}

func TestStatusRecorder_FirstHeaderWins(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := newStatusRecorder(rec)

	sr.WriteHeader(http.StatusTeapot)
	sr.WriteHeader(http.StatusOK)
	_, _ = sr.Write(bytes.Repeat([]byte("x"), 5))

	assert.Equal(t, http.StatusTeapot, sr.statusCode)
	assert.Equal(t, int64(5), sr.bytesWritten)
	assert.Same(t, sr, newStatusRecorder(sr))
}
