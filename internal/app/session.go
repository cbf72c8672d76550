package app

import (
	"context"
	"errors"
	"path/filepath"

	"go.trai.ch/press/internal/adapters/transform"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/press/internal/engine/cache"
	"go.trai.ch/press/internal/engine/fingerprint"
	"go.trai.ch/press/internal/engine/render"
	"go.trai.ch/press/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// Layout of the cache directory.
const (
	BlobDir      = "blobs"
	RecordsFile  = "state.db"
	ManifestFile = "outputs.cbor"
)

// session holds the stores of one site between build passes. The graph
// survives passes so that watch mode only applies the difference.
type session struct {
	site    *domain.Site
	graph   *domain.ContentGraph
	cache   *cache.Cache
	records ports.FingerprintRecords
	writer  ports.OutputWriter
	indexer ports.SearchIndexer
}

// open opens the cache and fingerprint records of site. Output sinks are
// opened only when withSinks is set.
func (a *App) open(ctx context.Context, site *domain.Site, withSinks bool) (*session, error) {
	s := &session{site: site, graph: domain.NewContentGraph()}
	fail := func(err error) (*session, error) {
		return nil, errors.Join(err, s.close())
	}

	blobs, err := a.stores.Blobs.Open(filepath.Join(site.CacheDir, BlobDir))
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open artifact store")
	}
	s.cache, err = cache.New(blobs, a.logger, a.metrics, cache.Options{
		MaxEntries: site.Cache.MaxEntries,
		MaxBytes:   site.Cache.MaxBytes,
	})
	if err != nil {
		return nil, err
	}

	records, err := a.stores.Records.Open(ctx, filepath.Join(site.CacheDir, RecordsFile))
	if err != nil {
		return fail(zerr.Wrap(err, "failed to open fingerprint records"))
	}
	s.records = records

	if !withSinks {
		return s, nil
	}
	writer, err := a.stores.Outputs.Open(site.OutputDir, filepath.Join(site.CacheDir, ManifestFile))
	if err != nil {
		return fail(zerr.Wrap(err, "failed to open output directory"))
	}
	s.writer = writer
	indexer, err := a.stores.Indexers.Open(site.Search)
	if err != nil {
		return fail(zerr.Wrap(err, "failed to connect search indexer"))
	}
	s.indexer = indexer
	return s, nil
}

// close persists the output manifest and releases every store.
func (s *session) close() error {
	var errs error
	if s.writer != nil {
		errs = errors.Join(errs, s.writer.Flush())
	}
	if s.indexer != nil {
		errs = errors.Join(errs, s.indexer.Close())
	}
	if s.records != nil {
		errs = errors.Join(errs, s.records.Close())
	}
	if s.cache != nil {
		errs = errors.Join(errs, s.cache.Close())
	}
	return errs
}

// load walks the sources, fingerprints them, and applies the result to the
// session graph.
func (a *App) load(ctx context.Context, s *session, since string) (*update, []domain.SourceItem, error) {
	items, err := a.walker.Walk(ctx, s.site)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to walk sources")
	}

	if since == "" {
		since = s.site.VCSSince
	}
	seeded, err := fingerprint.NewSeeder(s.records, a.detector, a.logger).Seed(ctx, s.site.Root, since, items)
	if err != nil {
		return nil, nil, err
	}

	upd := apply(s.graph, items, seeded.Self, s.known())
	return upd, items, nil
}

func (s *session) known() []domain.NodeID {
	if s.writer == nil {
		return nil
	}
	return s.writer.Known()
}

// newScheduler creates the scheduler of one pass.
func (a *App) newScheduler(s *session, items []domain.SourceItem) *scheduler.Scheduler {
	compressors := transform.Compressors(s.site.Precompress)
	var precompress render.PrecompressFunc
	if len(compressors) > 0 {
		precompress = func(p string, content []byte) (map[string][]byte, error) {
			return transform.Precompress(p, content, compressors)
		}
	}

	sched := scheduler.NewScheduler(
		s.cache,
		a.toolkit.Handlers(s.site, precompress),
		newSourceReader(items),
		a.tracer,
		a.logger,
	)
	if s.writer != nil {
		sched.WithSinks(s.writer, s.indexer)
	}
	if a.metrics != nil {
		sched.WithMetrics(a.metrics)
	}
	return sched
}

var _ ports.SourceReader = (*sourceReader)(nil)

// sourceReader serves the bytes captured by the walk, so a pass sees one
// consistent snapshot of the tree.
type sourceReader struct {
	content map[domain.NodeID][]byte
}

func newSourceReader(items []domain.SourceItem) *sourceReader {
	content := make(map[domain.NodeID][]byte, len(items))
	for _, item := range items {
		if item.Content != nil {
			content[item.ID] = item.Content
		}
	}
	return &sourceReader{content: content}
}

func (r *sourceReader) Read(_ context.Context, id domain.NodeID) ([]byte, error) {
	return r.content[id], nil
}
