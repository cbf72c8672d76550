package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/press/internal/core/ports"
)

// NodeID is the unique identifier for the blob store factory Graft node.
const NodeID graft.ID = "adapter.blob_store"

// Factory opens Stores.
type Factory struct{}

// Open implements ports.BlobStoreFactory.
func (Factory) Open(dir string) (ports.BlobStore, error) {
	return NewStore(dir)
}

func init() {
	graft.Register(graft.Node[ports.BlobStoreFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.BlobStoreFactory, error) {
			return Factory{}, nil
		},
	})
}
