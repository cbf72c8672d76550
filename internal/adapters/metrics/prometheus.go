// Package metrics records build engine measurements with Prometheus.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Metrics         = (*Recorder)(nil)
	_ ports.MetricsExporter = (*Recorder)(nil)
)

// Namespace prefixes every metric name.
const Namespace = "press"

const shutdownTimeout = 5 * time.Second

// Recorder implements ports.Metrics on its own registry, so several recorders
// can coexist in one process (tests, repeated builds in watch mode).
type Recorder struct {
	registry       *prom.Registry
	jobs           *prom.CounterVec
	jobDuration    *prom.HistogramVec
	cacheEvents    *prom.CounterVec
	sandbox        *prom.CounterVec
	builds         *prom.CounterVec
	buildDuration  prom.Histogram
	lastBuildNodes *prom.GaugeVec
}

// NewRecorder constructs and registers the build metrics.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prom.NewRegistry(),
		jobs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "jobs_total",
			Help:      "Finished jobs by node kind and final state",
		}, []string{"kind", "state"}),
		jobDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: Namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of executed jobs by node kind",
			Buckets:   prom.ExponentialBuckets(0.001, 4, 8),
		}, []string{"kind"}),
		cacheEvents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_events_total",
			Help:      "Artifact cache hits, misses, evictions, and corruptions",
		}, []string{"event"}),
		sandbox: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "sandbox_invocations_total",
			Help:      "Plugin invocations by plugin and outcome",
		}, []string{"plugin", "outcome"}),
		builds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "builds_total",
			Help:      "Build passes by outcome",
		}, []string{"outcome"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: Namespace,
			Name:      "build_duration_seconds",
			Help:      "Total duration of a build pass",
			Buckets:   prom.DefBuckets,
		}),
		lastBuildNodes: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_build_nodes",
			Help:      "Node counts of the most recent build pass by final state",
		}, []string{"state"}),
	}
	r.registry.MustRegister(
		r.jobs, r.jobDuration, r.cacheEvents, r.sandbox,
		r.builds, r.buildDuration, r.lastBuildNodes,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prom.Registry {
	return r.registry
}

// JobFinished implements ports.Metrics. Only executed jobs observe a duration.
func (r *Recorder) JobFinished(kind domain.NodeKind, state domain.JobState, d time.Duration) {
	r.jobs.WithLabelValues(string(kind), string(state)).Inc()
	if state == domain.JobDone || state == domain.JobFailed {
		r.jobDuration.WithLabelValues(string(kind)).Observe(d.Seconds())
	}
}

// CacheEvent implements ports.Metrics.
func (r *Recorder) CacheEvent(event string) {
	r.cacheEvents.WithLabelValues(event).Inc()
}

// SandboxOutcome implements ports.Metrics.
func (r *Recorder) SandboxOutcome(plugin, outcome string) {
	r.sandbox.WithLabelValues(plugin, outcome).Inc()
}

// BuildFinished implements ports.Metrics.
func (r *Recorder) BuildFinished(report *domain.BuildReport) {
	outcome := "success"
	switch {
	case report.Cancelled:
		outcome = "cancelled"
	case report.Failed > 0:
		outcome = "failed"
	}
	r.builds.WithLabelValues(outcome).Inc()
	r.buildDuration.Observe(report.Duration.Seconds())

	r.lastBuildNodes.WithLabelValues(string(domain.JobDone)).Set(float64(report.Done))
	r.lastBuildNodes.WithLabelValues(string(domain.JobFailed)).Set(float64(report.Failed))
	r.lastBuildNodes.WithLabelValues(string(domain.JobSkipped)).Set(float64(report.Skipped))
	r.lastBuildNodes.WithLabelValues(string(domain.JobCached)).Set(float64(report.CacheHits))
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to listen for metrics"), "addr", addr)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return zerr.Wrap(err, "metrics server failed")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return zerr.Wrap(err, "metrics server shutdown")
		}
		return nil
	}
}
