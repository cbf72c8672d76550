package transform

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/press/internal/core/ports"
)

// NodeID is the unique identifier for the asset transformer chain Graft node.
const NodeID graft.ID = "adapter.transformers"

// Default returns the transformer chain applied to assets, in order.
func Default() []ports.AssetTransformer {
	return []ports.AssetTransformer{CSSMinifier{}, JSONCompactor{}, PNGRecompressor{}}
}

func init() {
	graft.Register(graft.Node[[]ports.AssetTransformer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) ([]ports.AssetTransformer, error) {
			return Default(), nil
		},
	})
}
