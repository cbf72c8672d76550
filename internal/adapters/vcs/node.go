package vcs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/press/internal/core/ports"
)

// NodeID is the unique identifier for the change detector Graft node.
const NodeID graft.ID = "adapter.change_detector"

func init() {
	graft.Register(graft.Node[ports.ChangeDetector]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ChangeDetector, error) {
			return NewDetector(), nil
		},
	})
}
