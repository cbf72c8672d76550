package sqlite

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/press/internal/core/ports"
)

// NodeID is the unique identifier for the fingerprint records factory Graft node.
const NodeID graft.ID = "adapter.fingerprint_records"

func init() {
	graft.Register(graft.Node[ports.RecordsFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RecordsFactory, error) {
			return Factory{}, nil
		},
	})
}
