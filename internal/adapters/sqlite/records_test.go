package sqlite_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/press/internal/adapters/sqlite"
	"go.trai.ch/press/internal/core/domain"
)

func record(name string, b byte) domain.FingerprintRecord {
	return domain.FingerprintRecord{
		Node:    domain.NewNodeID(name),
		Path:    name,
		Size:    int64(b),
		ModTime: time.Unix(1700000000, 123456789).UTC(),
		Self:    domain.Fingerprint{b},
	}
}

func TestRecords_SaveAndLoad(t *testing.T) {
	r, err := sqlite.Open(t.Context(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	empty, err := r.Load(t.Context())
	require.NoError(t, err)
	assert.Empty(t, empty)

	a, b := record("a.md", 1), record("static/b.css", 2)
	require.NoError(t, r.Save(t.Context(), []domain.FingerprintRecord{a, b}))

	got, err := r.Load(t.Context())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a, got[a.Node])
	assert.Equal(t, b, got[b.Node])

	// Save replaces the previous set.
	require.NoError(t, r.Save(t.Context(), []domain.FingerprintRecord{b}))
	got, err = r.Load(t.Context())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, b.Node)
}

func TestRecords_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "state.db")

	r1, err := sqlite.Open(t.Context(), path)
	require.NoError(t, err)
	require.NoError(t, r1.Save(t.Context(), []domain.FingerprintRecord{record("a.md", 7)}))
	require.NoError(t, r1.Close())

	r2, err := sqlite.Factory{}.Open(t.Context(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r2.Close() })

	got, err := r2.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.Fingerprint{7}, got[domain.NewNodeID("a.md")].Self)
}
