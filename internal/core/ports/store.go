package ports

import (
	"context"

	"go.trai.ch/press/internal/core/domain"
)

// BlobStore is an opaque persistent key to bytes store.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type BlobStore interface {
	// Get returns the blob for key. Missing keys return false with no error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores the blob under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error
	// Delete removes the blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists every stored key.
	Keys(ctx context.Context) ([]string, error)
}

// FingerprintRecords persists self fingerprints across process restarts.
type FingerprintRecords interface {
	// Load returns the last saved record of every node.
	Load(ctx context.Context) (map[domain.NodeID]domain.FingerprintRecord, error)
	// Save replaces the stored records with the given set.
	Save(ctx context.Context, records []domain.FingerprintRecord) error
	// Close releases the underlying database.
	Close() error
}

// BlobStoreFactory opens a blob store rooted at a directory. Stores are opened
// per build because the cache directory comes from the loaded site.
type BlobStoreFactory interface {
	Open(dir string) (BlobStore, error)
}

// RecordsFactory opens the fingerprint record database at a path.
type RecordsFactory interface {
	Open(ctx context.Context, path string) (FingerprintRecords, error)
}
