package app

import (
	"errors"
	"slices"

	"go.trai.ch/press/internal/core/domain"
)

// update is the effect of one walk on the graph.
type update struct {
	// Added counts nodes new to the graph.
	Added int
	// Removed lists nodes that left the source tree, including nodes only
	// known from the output manifest of an earlier build.
	Removed []domain.NodeID
	// Broken lists declared dependencies on nodes that do not exist.
	Broken []domain.BrokenLink
	// Cycles holds every rejected strict edge.
	Cycles []*domain.CycleError
}

// Err returns the rejected edges as one error.
func (u *update) Err() error {
	errs := make([]error, 0, len(u.Cycles))
	for _, c := range u.Cycles {
		errs = append(errs, c)
	}
	return errors.Join(errs...)
}

// apply makes graph match the walked items: nodes are upserted, edges that are
// no longer declared are dropped before new ones are added, and nodes that
// disappeared are removed. An edge closing a strict cycle is rejected on its
// own and the rest of the update still applies.
func apply(graph *domain.ContentGraph, items []domain.SourceItem, self map[domain.NodeID]domain.Fingerprint, known []domain.NodeID) *update {
	upd := &update{}

	present := make(map[domain.NodeID]struct{}, len(items))
	for _, item := range items {
		present[item.ID] = struct{}{}
		if graph.UpsertNode(item.ID, item.Kind, self[item.ID]) {
			upd.Added++
		}
	}

	removed := make(map[domain.NodeID]struct{})
	for node := range graph.Nodes() {
		if _, ok := present[node.ID]; !ok {
			removed[node.ID] = struct{}{}
		}
	}
	for _, id := range known {
		if _, ok := present[id]; !ok {
			removed[id] = struct{}{}
		}
	}
	for id := range removed {
		if graph.Has(id) {
			// Present in the graph a moment ago; cannot fail.
			_ = graph.RemoveNode(id)
		}
		upd.Removed = append(upd.Removed, id)
	}
	slices.SortFunc(upd.Removed, domain.NodeID.Compare)

	declared := make(map[domain.Edge]struct{})
	for _, item := range items {
		for _, dep := range item.Deps {
			declared[domain.Edge{From: item.ID, To: dep.Target, Kind: dep.Kind}] = struct{}{}
		}
	}

	for _, item := range items {
		for _, e := range graph.EdgesFrom(item.ID) {
			if _, ok := declared[e]; !ok {
				graph.RemoveEdge(e.From, e.To, e.Kind)
			}
		}
	}

	for _, item := range items {
		for _, dep := range item.Deps {
			if !graph.Has(dep.Target) {
				upd.Broken = append(upd.Broken, domain.BrokenLink{From: item.ID, To: dep.Target.String()})
				continue
			}
			err := graph.AddEdge(item.ID, dep.Target, dep.Kind)
			var cycle *domain.CycleError
			if errors.As(err, &cycle) {
				upd.Cycles = append(upd.Cycles, cycle)
			}
		}
	}
	return upd
}
