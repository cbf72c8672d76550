package fingerprint

import (
	"context"
	"runtime"
	"sync"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Seeder computes self fingerprints for a walk, reusing persisted records for
// files that a change set reports as untouched.
type Seeder struct {
	records  ports.FingerprintRecords
	detector ports.ChangeDetector
	logger   ports.Logger
}

// NewSeeder creates a Seeder. records and detector may be nil, in which case
// every fingerprint is recomputed.
func NewSeeder(records ports.FingerprintRecords, detector ports.ChangeDetector, logger ports.Logger) *Seeder {
	return &Seeder{records: records, detector: detector, logger: logger}
}

// SeedResult holds the outcome of a seeding pass.
type SeedResult struct {
	Self   map[domain.NodeID]domain.Fingerprint
	Reused int
}

// Seed fingerprints every item. When since names a revision, items whose path
// is outside the change set and whose size and modification time match the
// stored record keep their recorded fingerprint.
func (s *Seeder) Seed(ctx context.Context, root, since string, items []domain.SourceItem) (*SeedResult, error) {
	previous, changed := s.loadPrevious(ctx, root, since)

	result := &SeedResult{Self: make(map[domain.NodeID]domain.Fingerprint, len(items))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fp, reused := s.fingerprint(item, previous, changed)
			mu.Lock()
			result.Self[item.ID] = fp
			if reused {
				result.Reused++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, zerr.Wrap(err, "fingerprinting interrupted")
	}

	if s.records != nil {
		records := make([]domain.FingerprintRecord, 0, len(items))
		for _, item := range items {
			if item.Path == "" {
				continue
			}
			records = append(records, domain.FingerprintRecord{
				Node:    item.ID,
				Path:    item.Path,
				Size:    item.Size,
				ModTime: item.ModTime,
				Self:    result.Self[item.ID],
			})
		}
		if err := s.records.Save(ctx, records); err != nil {
			return nil, zerr.Wrap(err, "failed to save fingerprint records")
		}
	}

	if s.logger != nil {
		s.logger.Debug("fingerprints seeded", "nodes", len(items), "reused", result.Reused)
	}
	return result, nil
}

// loadPrevious returns the stored records and the change set. A nil change set
// disables reuse.
func (s *Seeder) loadPrevious(
	ctx context.Context, root, since string,
) (map[domain.NodeID]domain.FingerprintRecord, map[string]struct{}) {
	if s.records == nil || s.detector == nil || since == "" {
		return nil, nil
	}

	paths, err := s.detector.ChangedPaths(ctx, root, since)
	if err != nil {
		s.warn("change detection unavailable, recomputing all fingerprints", err)
		return nil, nil
	}
	previous, err := s.records.Load(ctx)
	if err != nil {
		s.warn("fingerprint records unavailable, recomputing all fingerprints", err)
		return nil, nil
	}

	changed := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		changed[p] = struct{}{}
	}
	return previous, changed
}

func (s *Seeder) fingerprint(
	item domain.SourceItem,
	previous map[domain.NodeID]domain.FingerprintRecord,
	changed map[string]struct{},
) (domain.Fingerprint, bool) {
	if changed != nil && item.Path != "" {
		if _, dirty := changed[item.Path]; !dirty {
			rec, ok := previous[item.ID]
			if ok && rec.Path == item.Path && rec.Size == item.Size && rec.ModTime.Equal(item.ModTime) && !rec.Self.IsZero() {
				return rec.Self, true
			}
		}
	}
	return Self(item), false
}

func (s *Seeder) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, "error", err)
	}
}
