package markdown

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/press/internal/adapters/highlight"
	"go.trai.ch/press/internal/core/ports"
)

// NodeID is the unique identifier for the markdown renderer Graft node.
const NodeID graft.ID = "adapter.markdown"

func init() {
	graft.Register(graft.Node[ports.MarkdownRenderer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{highlight.NodeID},
		Run: func(ctx context.Context) (ports.MarkdownRenderer, error) {
			hl, err := graft.Dep[ports.Highlighter](ctx)
			if err != nil {
				return nil, err
			}
			return New(hl), nil
		},
	})
}
