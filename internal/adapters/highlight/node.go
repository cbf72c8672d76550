package highlight

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/press/internal/core/ports"
)

// NodeID is the unique identifier for the highlighter Graft node.
const NodeID graft.ID = "adapter.highlighter"

func init() {
	graft.Register(graft.Node[ports.Highlighter]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Highlighter, error) {
			return New(), nil
		},
	})
}
