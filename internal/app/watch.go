package app

import (
	"context"
	"errors"

	"go.trai.ch/press/internal/adapters/watcher"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/zerr"
)

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	Config      string
	Parallelism int
}

// Watch builds the site, then rebuilds it after every burst of source
// changes until ctx is done. The artifact cache and the content graph stay
// open between passes. Failed passes are logged and do not end the loop.
func (a *App) Watch(ctx context.Context, opts WatchOptions) (err error) {
	if a.watchers == nil {
		return zerr.New("watch mode is not available")
	}

	site, err := a.loadSite(opts.Config)
	if err != nil {
		return err
	}

	a.setupOTel()
	stop := a.serveMetrics(ctx, site)
	defer stop()

	s, err := a.open(ctx, site, true)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.close())
	}()

	w, err := a.watchers.New([]string{site.OutputDir, site.CacheDir})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, w.Stop())
	}()
	if err := w.Start(ctx, site.SourceDir); err != nil {
		return err
	}

	// One queued batch is enough: every pass rereads the whole tree.
	batches := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultWindow, func(paths []string) {
		select {
		case batches <- paths:
		default:
		}
	})
	defer debouncer.Stop()

	go func() {
		for event := range w.Events() {
			debouncer.Add(event.Path)
		}
	}()

	build := BuildOptions{Parallelism: opts.Parallelism}
	a.watchPass(ctx, s, build)
	a.logger.Info("watching for changes", "root", site.SourceDir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-batches:
			a.logger.Info("change detected", "paths", len(paths))
			a.watchPass(ctx, s, build)
		}
	}
}

func (a *App) watchPass(ctx context.Context, s *session, opts BuildOptions) {
	report, err := a.pass(ctx, s, opts)
	if err != nil && ctx.Err() == nil && !errors.Is(err, domain.ErrBuildFailed) {
		a.logger.Error(err)
	}
	if report != nil && a.onPass != nil {
		a.onPass(report)
	}
}
