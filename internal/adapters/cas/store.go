// Package cas implements the persistent blob store behind the artifact cache.
package cas

import (
	"context"
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BlobStore = (*Store)(nil)

const (
	dirPerm  = 0o750
	filePerm = 0o600
	blobExt  = ".blob"
)

// Blob headers.
const (
	tagRaw byte = 0
	tagLZ4 byte = 1
)

var errInvalidKey = zerr.New("invalid blob key")

// Store implements ports.BlobStore using a file-per-key strategy sharded by
// the first two characters of the key. Blobs are LZ4 block compressed when
// that makes them smaller.
type Store struct {
	root string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) (*Store, error) {
	root := filepath.Clean(dir)
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create blob directory"), "path", root)
	}
	return &Store{root: root}, nil
}

// Root returns the directory holding the blobs.
func (s *Store) Root() string {
	return s.root
}

// Get retrieves the blob stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	filename, err := s.filename(key)
	if err != nil {
		return nil, false, err
	}

	//nolint:gosec // Path is constructed from trusted directory and validated key
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, zerr.With(zerr.Wrap(domain.ErrIO, "failed to read blob"), "key", key)
	}

	payload, err := decode(data)
	if err != nil {
		return nil, false, zerr.With(zerr.Wrap(domain.ErrCacheCorruption, err.Error()), "key", key)
	}
	return payload, true, nil
}

// Put stores data under key. The write is atomic: readers see either the
// previous blob or the new one.
func (s *Store) Put(_ context.Context, key string, data []byte) error {
	filename, err := s.filename(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create blob shard"), "path", dir)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create temp blob"), "key", key)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // Already renamed on success

	if _, err := tmp.Write(encode(data)); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, "failed to write blob"), "key", key)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, "failed to chmod blob"), "key", key)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close blob"), "key", key)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to commit blob"), "key", key)
	}
	return nil
}

// Delete removes the blob stored under key.
func (s *Store) Delete(_ context.Context, key string) error {
	filename, err := s.filename(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to delete blob"), "key", key)
	}
	return nil
}

// Keys lists every stored key in shard order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), blobExt) {
			return nil
		}
		keys = append(keys, strings.TrimSuffix(d.Name(), blobExt))
		return nil
	})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to list blobs")
	}
	return keys, nil
}

func (s *Store) filename(key string) (string, error) {
	if len(key) < 3 || strings.ContainsFunc(key, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '-' || r == '_')
	}) {
		return "", zerr.With(errInvalidKey, "key", key)
	}
	return filepath.Join(s.root, key[:2], key+blobExt), nil
}

// encode prefixes the payload with a tag byte and its uncompressed length.
func encode(data []byte) []byte {
	header := make([]byte, 1+binary.MaxVarintLen64)
	n := binary.PutUvarint(header[1:], uint64(len(data)))

	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, compressed, nil)
	// Zero means incompressible.
	if err != nil || written == 0 || written >= len(data) {
		header[0] = tagRaw
		return append(header[:1+n], data...)
	}
	header[0] = tagLZ4
	return append(header[:1+n], compressed[:written]...)
}

func decode(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, zerr.New("truncated blob header")
	}
	size, n := binary.Uvarint(data[1:])
	if n <= 0 {
		return nil, zerr.New("malformed blob length")
	}
	body := data[1+n:]

	switch data[0] {
	case tagRaw:
		if uint64(len(body)) != size {
			return nil, zerr.New("blob length mismatch")
		}
		return body, nil
	case tagLZ4:
		out := make([]byte, size)
		read, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, zerr.Wrap(err, "lz4 decompress")
		}
		if uint64(read) != size {
			return nil, zerr.New("blob length mismatch")
		}
		return out, nil
	default:
		return nil, zerr.New("unknown blob encoding")
	}
}
