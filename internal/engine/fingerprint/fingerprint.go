// Package fingerprint computes self and combined content fingerprints.
package fingerprint

import (
	"slices"
	"sync"

	"github.com/zeebo/blake3"
	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/zerr"
)

// Self computes the self fingerprint of a source item from its kind, id,
// configuration and raw content. Sections are separated by a zero byte so
// adjacent fields cannot alias.
func Self(item domain.SourceItem) domain.Fingerprint {
	hasher := blake3.New()

	_, _ = hasher.WriteString(string(item.Kind))
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.WriteString(item.ID.String())
	_, _ = hasher.Write([]byte{0})

	keys := make([]string, 0, len(item.Config))
	for k := range item.Config {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		_, _ = hasher.WriteString(k)
		_, _ = hasher.Write([]byte{'='})
		_, _ = hasher.WriteString(item.Config[k])
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})

	_, _ = hasher.Write(item.Content)

	var fp domain.Fingerprint
	copy(fp[:], hasher.Sum(nil))
	return fp
}

// Output fingerprints the produced bytes of an artifact: its content followed
// by its named extra outputs in name order.
func Output(a domain.Artifact) domain.Fingerprint {
	hasher := blake3.New()
	_, _ = hasher.WriteString(a.MediaType)
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.Write(a.Content)

	names := make([]string, 0, len(a.Outputs))
	for name := range a.Outputs {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.WriteString(name)
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.Write(a.Outputs[name])
	}

	var fp domain.Fingerprint
	copy(fp[:], hasher.Sum(nil))
	return fp
}

// Store derives combined fingerprints from a content graph. Results are
// memoized for the graph generation they were computed against.
type Store struct {
	graph *domain.ContentGraph

	mu   sync.Mutex
	gen  uint64
	memo map[domain.NodeID]domain.Fingerprint
}

// NewStore creates a Store reading from graph.
func NewStore(graph *domain.ContentGraph) *Store {
	return &Store{
		graph: graph,
		memo:  make(map[domain.NodeID]domain.Fingerprint),
	}
}

// Combined returns the combined fingerprint of id. A leaf's combined
// fingerprint equals its self fingerprint; any other node hashes its self
// fingerprint followed by the sorted combined fingerprints of its strict
// dependencies.
func (s *Store) Combined(id domain.NodeID) (domain.Fingerprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetIfStale()
	return s.combined(id, nil)
}

// All returns the combined fingerprint of every node in the graph.
func (s *Store) All() (map[domain.NodeID]domain.Fingerprint, error) {
	order, err := s.graph.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetIfStale()
	out := make(map[domain.NodeID]domain.Fingerprint, len(order))
	for _, id := range order {
		fp, err := s.combined(id, nil)
		if err != nil {
			return nil, err
		}
		out[id] = fp
	}
	return out, nil
}

func (s *Store) resetIfStale() {
	if gen := s.graph.Generation(); gen != s.gen {
		clear(s.memo)
		s.gen = gen
	}
}

func (s *Store) combined(id domain.NodeID, visiting []domain.NodeID) (domain.Fingerprint, error) {
	if fp, ok := s.memo[id]; ok {
		return fp, nil
	}

	node, ok := s.graph.Node(id)
	if !ok {
		return domain.Fingerprint{}, zerr.With(zerr.Wrap(domain.ErrUnknownNode, "cannot fingerprint"), "node", id.String())
	}
	if slices.Contains(visiting, id) {
		return domain.Fingerprint{}, &domain.CycleError{Path: append(slices.Clone(visiting), id)}
	}

	deps := s.graph.Dependencies(id)
	if len(deps) == 0 {
		s.memo[id] = node.Self
		return node.Self, nil
	}

	visiting = append(visiting, id)
	parts := make([]domain.Fingerprint, 0, len(deps))
	for _, dep := range deps {
		fp, err := s.combined(dep, visiting)
		if err != nil {
			return domain.Fingerprint{}, err
		}
		parts = append(parts, fp)
	}
	slices.SortFunc(parts, domain.Fingerprint.Compare)

	hasher := blake3.New()
	_, _ = hasher.Write(node.Self[:])
	for _, p := range parts {
		_, _ = hasher.Write(p[:])
	}

	var fp domain.Fingerprint
	copy(fp[:], hasher.Sum(nil))
	s.memo[id] = fp
	return fp, nil
}
