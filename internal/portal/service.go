// Package portal serves the oncology portal's read-only HTTP API: month
// calendars, day agendas, patient records and the admin dashboard.
package portal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/medrex/onco-portal/internal/fixtures"
	"github.com/medrex/onco-portal/pkg/config"
	"github.com/medrex/onco-portal/pkg/interfaces"
	"github.com/medrex/onco-portal/pkg/logger"
	"github.com/medrex/onco-portal/pkg/monitoring"
)

// ServiceName identifies the portal in logs, metrics and traces
const ServiceName = "onco-portal"

// Version is stamped at build time
var Version = "dev"

// Repositories bundles the data sources the portal reads
type Repositories struct {
	Patients   interfaces.PatientRepository
	Events     interfaces.EventRepository
	Biomarkers interfaces.BiomarkerRepository
	Timeline   interfaces.TimelineRepository
}

// Service is the portal HTTP service
type Service struct {
	config   *config.Config
	logger   *logger.Logger
	repos    Repositories
	calendar *CalendarProjector
	reports  *ReportService
	metrics  *monitoring.MetricsCollector
	tracing  *monitoring.TracingManager
	health   *monitoring.HealthManager
	monitor  *monitoring.MonitoringMiddleware
	fallback interfaces.FallbackRenderer
	handler  http.Handler
	server   *http.Server
}

// New creates a portal service over the configured fixture file
func New(cfg *config.Config, log *logger.Logger) (*Service, error) {
	store, err := fixtures.Load(cfg.Fixtures.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixtures: %w", err)
	}
	log.WithComponent("fixtures").WithFields(map[string]interface{}{
		"source":   fixtureSourceName(cfg.Fixtures.Path),
		"fixtures": store.Counts(),
		"version":  store.Version(),
	}).Info("Fixtures loaded")

	repos := Repositories{
		Patients:   store.Patients(),
		Events:     store.Events(),
		Biomarkers: store.Biomarkers(),
		Timeline:   store.Timeline(),
	}
	return NewWithRepositories(cfg, log, repos, store)
}

func fixtureSourceName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// NewWithRepositories creates a portal service over explicit repositories.
// fixtureSource feeds the health check and may be nil.
func NewWithRepositories(cfg *config.Config, log *logger.Logger, repos Repositories, fixtureSource monitoring.FixtureSource) (*Service, error) {
	return newService(cfg, log, repos, fixtureSource, time.Now)
}

// loadedSource treats a nil *fixtures.Store held in the interface as no
// source at all; its methods must not be called
func loadedSource(source monitoring.FixtureSource) monitoring.FixtureSource {
	if store, ok := source.(*fixtures.Store); ok && store == nil {
		return nil
	}
	return source
}

func newService(cfg *config.Config, log *logger.Logger, repos Repositories, fixtureSource monitoring.FixtureSource, clock func() time.Time) (*Service, error) {
	tracing, err := monitoring.NewTracingManager(monitoring.TracingConfig{
		Enabled:        cfg.Tracing.Enabled,
		Exporter:       cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: cfg.Tracing.ServiceVersion,
		Environment:    cfg.Tracing.Environment,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	metrics := monitoring.NewMetricsCollector(ServiceName)

	projector, err := NewCalendarProjector(repos.Events, ProjectorConfig{
		CacheSize: cfg.Calendar.CacheSize,
		Location:  cfg.Calendar.Location(),
		Clock:     clock,
	}, metrics, tracing, log)
	if err != nil {
		return nil, err
	}

	health := monitoring.NewHealthManager(ServiceName, Version)
	if fixtureSource = loadedSource(fixtureSource); fixtureSource != nil {
		health.RegisterChecker("fixtures", monitoring.NewFixtureHealthChecker(fixtureSource))
	}
	health.RegisterChecker("calendar_cache", monitoring.NewCustomHealthChecker(func(ctx context.Context) monitoring.HealthCheck {
		return monitoring.HealthCheck{
			Status:  monitoring.HealthStatusHealthy,
			Message: "Month cache available",
			Details: map[string]interface{}{
				"entries":  projector.CacheLen(),
				"capacity": cfg.Calendar.CacheSize,
			},
		}
	}))

	s := &Service{
		config:   cfg,
		logger:   log,
		repos:    repos,
		calendar: projector,
		reports:  NewReportService(repos.Patients, repos.Events, projector.Today, tracing),
		metrics:  metrics,
		tracing:  tracing,
		health:   health,
		monitor:  monitoring.NewMonitoringMiddleware(metrics, tracing, log),
		fallback: NewJSONFallback(log),
	}

	router := mux.NewRouter()
	s.setupRoutes(router)
	s.handler = router

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	return s, nil
}

// Handler returns the service's HTTP handler
func (s *Service) Handler() http.Handler {
	return s.handler
}

// Calendar returns the calendar projector backing the service
func (s *Service) Calendar() *CalendarProjector {
	return s.calendar
}

// Start serves HTTP on the configured address until Stop is called
func (s *Service) Start() error {
	s.logger.WithService(ServiceName).Infof("Starting portal service on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests and flushes pending spans
func (s *Service) Stop(ctx context.Context) error {
	var errs []error
	s.logger.WithService(ServiceName).Info("Stopping portal service")
	if err := s.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down server: %w", err))
	}
	if err := s.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down tracing: %w", err))
	}
	return errors.Join(errs...)
}
