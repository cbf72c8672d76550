// Package app implements the application layer for press.
package app

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.trai.ch/press/internal/adapters/telemetry"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/press/internal/engine/render"
	"go.trai.ch/zerr"
)

// Stores opens the per-site persistence and sinks. The directories come from
// the loaded site, so every store is opened per command.
type Stores struct {
	Blobs    ports.BlobStoreFactory
	Records  ports.RecordsFactory
	Outputs  ports.OutputWriterFactory
	Indexers ports.SearchIndexerFactory
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	walker       ports.SourceWalker
	toolkit      *render.Toolkit
	stores       Stores
	logger       ports.Logger

	tracer   ports.Tracer
	metrics  ports.Metrics
	exporter ports.MetricsExporter
	detector ports.ChangeDetector
	watchers ports.WatcherFactory

	// onPass observes the report of every watch pass.
	onPass func(*domain.BuildReport)

	otelOnce sync.Once
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	walker ports.SourceWalker,
	toolkit *render.Toolkit,
	stores Stores,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		walker:       walker,
		toolkit:      toolkit,
		stores:       stores,
		logger:       log,
		tracer:       telemetry.NewNoOpTracer(),
	}
}

// WithTracer sets the tracer handed to the scheduler.
func (a *App) WithTracer(tracer ports.Tracer) *App {
	a.tracer = tracer
	return a
}

// WithMetrics records build measurements in m. exporter serves them when the
// site configures a metrics address; it may be nil.
func (a *App) WithMetrics(m ports.Metrics, exporter ports.MetricsExporter) *App {
	a.metrics = m
	a.exporter = exporter
	return a
}

// WithChangeDetector enables fingerprint reuse for files outside a VCS change set.
func (a *App) WithChangeDetector(d ports.ChangeDetector) *App {
	a.detector = d
	return a
}

// WithWatcherFactory enables the watch command.
func (a *App) WithWatcherFactory(f ports.WatcherFactory) *App {
	a.watchers = f
	return a
}

// SetVerbose toggles debug output on loggers that support it.
func (a *App) SetVerbose(verbose bool) {
	if l, ok := a.logger.(interface{ SetVerbose(bool) }); ok {
		l.SetVerbose(verbose)
	}
}

func (a *App) loadSite(path string) (*domain.Site, error) {
	if path == "" {
		path = "."
	}
	site, err := a.configLoader.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return site, nil
}

// setupOTel registers a tracer provider that reports finished spans through
// the logger. It runs once per process.
func (a *App) setupOTel() {
	a.otelOnce.Do(func() {
		otel.SetTracerProvider(telemetry.NewProvider(a.logger))
	})
}

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}
