package ports

import (
	"context"

	"go.trai.ch/press/internal/core/domain"
)

// SearchIndexer receives finished documents. Implementations log their own
// failures; the scheduler never fails a job because of indexing.
//
//go:generate go run go.uber.org/mock/mockgen -source=sink.go -destination=mocks/mock_sink.go -package=mocks
type SearchIndexer interface {
	Index(ctx context.Context, doc domain.SearchDocument) error
	Close() error
}

// OutputWriter places finished artifacts into the output directory.
type OutputWriter interface {
	// Write emits the artifact. fresh is false for cache hits, which only need
	// restoring when the file on disk is missing or differs.
	Write(ctx context.Context, artifact domain.Artifact, fresh bool) error
	// Remove deletes the outputs of a node that left the graph.
	Remove(ctx context.Context, id domain.NodeID) error
	// Known lists the nodes with outputs recorded by previous builds.
	Known() []domain.NodeID
	// Flush persists the record of which node produced which files.
	Flush() error
}

// OutputWriterFactory opens an output writer for a site.
type OutputWriterFactory interface {
	Open(outputDir, manifestPath string) (OutputWriter, error)
}

// SearchIndexerFactory connects the search indexer configured for a site.
type SearchIndexerFactory interface {
	Open(cfg domain.SearchConfig) (SearchIndexer, error)
}
