// Package sqlite persists fingerprint records in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

var _ ports.FingerprintRecords = (*Records)(nil)

// Records implements ports.FingerprintRecords.
type Records struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the database at path. Use ":memory:" for tests.
func Open(ctx context.Context, path string) (*Records, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to create state directory"), "path", path)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open state database"), "path", path)
	}
	// One connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	r := &Records{db: db}
	if err := r.initialize(ctx); err != nil {
		_ = db.Close()
		return nil, zerr.With(zerr.Wrap(err, "failed to initialize state schema"), "path", path)
	}
	return r, nil
}

func (r *Records) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS fingerprints (
		node TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		size INTEGER NOT NULL,
		mtime INTEGER NOT NULL,
		self TEXT NOT NULL
	);
	`
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Load returns every stored record keyed by node.
func (r *Records) Load(ctx context.Context) (map[domain.NodeID]domain.FingerprintRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, "SELECT node, path, size, mtime, self FROM fingerprints")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to query fingerprint records")
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	out := make(map[domain.NodeID]domain.FingerprintRecord)
	for rows.Next() {
		var (
			node, path, self string
			size, mtime      int64
		)
		if err := rows.Scan(&node, &path, &size, &mtime, &self); err != nil {
			return nil, zerr.Wrap(err, "failed to scan fingerprint record")
		}
		fp, err := domain.ParseFingerprint(self)
		if err != nil {
			// A damaged row only costs a rehash.
			continue
		}
		id := domain.NewNodeID(node)
		out[id] = domain.FingerprintRecord{
			Node:    id,
			Path:    path,
			Size:    size,
			ModTime: time.Unix(0, mtime).UTC(),
			Self:    fp,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, zerr.Wrap(err, "failed to iterate fingerprint records")
	}
	return out, nil
}

// Save replaces the stored records with records in a single transaction.
func (r *Records) Save(ctx context.Context, records []domain.FingerprintRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return zerr.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM fingerprints"); err != nil {
		return zerr.Wrap(err, "failed to clear fingerprint records")
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO fingerprints (node, path, size, mtime, self) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return zerr.Wrap(err, "failed to prepare insert")
	}
	defer stmt.Close() //nolint:errcheck // Closed with the transaction

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx, rec.Node.String(), rec.Path, rec.Size, rec.ModTime.UnixNano(), rec.Self.String())
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to insert fingerprint record"), "node", rec.Node.String())
		}
	}

	if err := tx.Commit(); err != nil {
		return zerr.Wrap(err, "failed to commit fingerprint records")
	}
	return nil
}

// Close closes the database.
func (r *Records) Close() error {
	return r.db.Close()
}

// Factory opens Records.
type Factory struct{}

// Open implements ports.RecordsFactory.
func (Factory) Open(ctx context.Context, path string) (ports.FingerprintRecords, error) {
	return Open(ctx, path)
}
