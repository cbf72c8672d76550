package app

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.trai.ch/press/internal/adapters/fs"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/engine/render"
	"go.trai.ch/press/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	// Config is press.yaml or a directory to search upwards from.
	Config string
	// Force rebuilds every node, ignoring the artifact cache.
	Force bool
	// Since overrides the revision used to reuse fingerprints.
	Since string
	// Parallelism overrides the configured worker count when positive.
	Parallelism int
}

// Build runs one build pass over the site and returns its report. The error
// wraps domain.ErrBuildFailed when any node failed.
func (a *App) Build(ctx context.Context, opts BuildOptions) (report *domain.BuildReport, err error) {
	// 1. Load the site
	site, err := a.loadSite(opts.Config)
	if err != nil {
		return nil, err
	}

	// 2. Initialize telemetry
	a.setupOTel()
	stop := a.serveMetrics(ctx, site)
	defer stop()

	// 3. Open the stores
	s, err := a.open(ctx, site, true)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, s.close())
	}()

	// 4. Build
	return a.pass(ctx, s, opts)
}

// pass walks the sources, brings the graph up to date, and builds it.
func (a *App) pass(ctx context.Context, s *session, opts BuildOptions) (*domain.BuildReport, error) {
	upd, items, err := a.load(ctx, s, opts.Since)
	if err != nil {
		return nil, err
	}
	if len(upd.Cycles) > 0 {
		return nil, zerr.Wrap(upd.Err(), "content graph rejected")
	}
	a.retire(ctx, s, upd.Removed)

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = s.site.Parallelism
	}
	report, err := a.newScheduler(s, items).Build(ctx, s.graph, scheduler.Options{
		Parallelism: parallelism,
		Force:       opts.Force,
		BuildID:     uuid.NewString(),
	})
	if report != nil {
		report.BrokenLinks = append(report.BrokenLinks, upd.Broken...)
		report.Sort()
	}
	if err != nil {
		return report, err
	}

	a.summarize(report)
	if report.Failed > 0 {
		return report, zerr.With(zerr.Wrap(domain.ErrBuildFailed, "build finished with failures"), "failed", report.Failed)
	}
	return report, nil
}

// retire deletes the outputs of nodes that left the source tree and tells the
// search indexer about removed documents.
func (a *App) retire(ctx context.Context, s *session, removed []domain.NodeID) {
	if s.writer == nil || len(removed) == 0 {
		return
	}
	for _, id := range removed {
		if err := s.writer.Remove(ctx, id); err != nil {
			a.logger.Warn("failed to remove stale outputs", "node", id.String(), "error", err)
		}
		if !isDocument(id) || s.indexer == nil {
			continue
		}
		doc := domain.SearchDocument{
			ID:      id,
			URL:     render.URL(s.site.BaseURL, render.OutputPath(id)),
			Deleted: true,
		}
		if err := s.indexer.Index(ctx, doc); err != nil {
			a.logger.Warn("search indexer rejected removal", "node", id.String(), "error", err)
		}
	}
	a.logger.Info("removed outputs of deleted sources", "nodes", len(removed))
}

func isDocument(id domain.NodeID) bool {
	if _, _, ok := domain.ParsePluginNodeID(id); ok {
		return false
	}
	return fs.Classify(id.String()) == domain.KindDocument
}

func (a *App) summarize(r *domain.BuildReport) {
	for _, link := range r.BrokenLinks {
		a.logger.Warn("broken link", "from", link.From.String(), "to", link.To)
	}
	a.logger.Info("build finished",
		"build_id", r.BuildID,
		"executed", r.Executed,
		"cached", r.CacheHits,
		"failed", r.Failed,
		"skipped", r.Skipped,
		"duration", r.Duration,
	)
}

// serveMetrics exposes the metrics endpoint when the site configures one.
// The returned function stops it.
func (a *App) serveMetrics(ctx context.Context, site *domain.Site) func() {
	if a.exporter == nil || site.MetricsAddr == "" {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	var g errgroup.Group
	g.Go(func() error {
		return a.exporter.Serve(ctx, site.MetricsAddr)
	})
	a.logger.Info("serving metrics", "addr", site.MetricsAddr)

	return func() {
		cancel()
		if err := g.Wait(); err != nil {
			a.logger.Warn("metrics endpoint failed", "error", err)
		}
	}
}
