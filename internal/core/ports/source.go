package ports

import (
	"context"

	"go.trai.ch/press/internal/core/domain"
)

// SourceWalker enumerates the raw inputs of a site.
//
//go:generate go run go.uber.org/mock/mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks
type SourceWalker interface {
	// Walk returns every source item with its declared dependencies, sorted by ID.
	Walk(ctx context.Context, site *domain.Site) ([]domain.SourceItem, error)
}

// SourceReader gives handlers access to the raw bytes of a node.
type SourceReader interface {
	// Read returns the raw content of the node. Derived nodes return nil.
	Read(ctx context.Context, id domain.NodeID) ([]byte, error)
}
