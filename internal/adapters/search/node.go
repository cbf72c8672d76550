package search

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/press/internal/adapters/logger"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
)

// NodeID is the unique identifier for the search indexer factory Graft node.
const NodeID graft.ID = "adapter.search_indexer"

// Factory opens a Publisher, or Noop when no server is configured.
type Factory struct {
	Logger ports.Logger
}

// Open implements ports.SearchIndexerFactory.
func (f Factory) Open(cfg domain.SearchConfig) (ports.SearchIndexer, error) {
	if cfg.NATSURL == "" {
		return Noop{}, nil
	}
	return Connect(cfg, f.Logger)
}

func init() {
	graft.Register(graft.Node[ports.SearchIndexerFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.SearchIndexerFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return Factory{Logger: log}, nil
		},
	})
}
