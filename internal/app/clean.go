package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/engine/fingerprint"
	"go.trai.ch/zerr"
)

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	Config string
	// GC keeps the output and prunes only cache entries that no current
	// node can hit.
	GC bool
}

// Clean removes the output and cache directories, or garbage-collects the
// artifact cache when GC is set.
func (a *App) Clean(ctx context.Context, options CleanOptions) error {
	site, err := a.loadSite(options.Config)
	if err != nil {
		return err
	}
	if options.GC {
		return a.collect(ctx, site)
	}

	var errs error

	// Helper to remove a directory and log the action
	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name), "path", path)
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	remove(site.OutputDir, "output directory")
	remove(site.CacheDir, "build cache")

	return errs
}

// collect prunes every persisted artifact whose fingerprint is not the
// combined fingerprint of a node in the current tree.
func (a *App) collect(ctx context.Context, site *domain.Site) (err error) {
	s, err := a.open(ctx, site, false)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.close())
	}()

	upd, _, err := a.load(ctx, s, "")
	if err != nil {
		return err
	}
	if len(upd.Cycles) > 0 {
		return zerr.Wrap(upd.Err(), "content graph rejected")
	}

	combined, err := fingerprint.NewStore(s.graph).All()
	if err != nil {
		return err
	}
	keep := make(map[domain.Fingerprint]struct{}, len(combined))
	for _, fp := range combined {
		keep[fp] = struct{}{}
	}

	removed, err := s.cache.Prune(ctx, keep)
	if err != nil {
		return zerr.Wrap(err, "failed to prune artifact cache")
	}
	a.logger.Info("pruned artifact cache", "removed", removed, "kept", len(keep))
	return nil
}
