// Package domain contains the core domain models of the incremental build engine:
// the content graph, fingerprints, job states, artifacts, and build reports.
package domain

import (
	"iter"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/zerr"
)

// Node is one buildable artifact. Callers always receive copies; the graph owns the original.
type Node struct {
	ID       NodeID
	Kind     NodeKind
	Self     Fingerprint
	Combined Fingerprint
	Status   JobState
	Output   Fingerprint
	Err      error
}

// Edge is a directed dependency from consumer (From) to dependency (To).
type Edge struct {
	From NodeID
	To   NodeID
	Kind EdgeKind
}

// Outcome is the result of one build pass for a node, written back after the pass.
type Outcome struct {
	Combined Fingerprint
	Status   JobState
	Output   Fingerprint
	Err      error
}

type slot struct {
	node Node
	live bool
	out  map[int]edgeMask // dependencies
	in   map[int]edgeMask // consumers
}

// ContentGraph is an arena of nodes addressed by slot index with explicit
// adjacency in both directions. The strict-edge subgraph is kept acyclic at all
// times: a mutation that would break the invariant is rejected before it is applied.
//
// Mutations are expected between build passes only. Read methods are safe for
// concurrent use.
type ContentGraph struct {
	mu         sync.RWMutex
	slots      []slot
	free       []int
	index      map[NodeID]int
	generation uint64

	memoMu  sync.Mutex
	closure map[int][]NodeID
}

// NewContentGraph creates an empty graph.
func NewContentGraph() *ContentGraph {
	return &ContentGraph{
		index:   make(map[NodeID]int),
		closure: make(map[int][]NodeID),
	}
}

// Generation increases on every mutation that can change fingerprints.
func (g *ContentGraph) Generation() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.generation
}

// Len returns the number of nodes.
func (g *ContentGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.index)
}

// UpsertNode inserts a node or updates the kind and self fingerprint of an
// existing one. It reports whether the node was created.
func (g *ContentGraph) UpsertNode(id NodeID, kind NodeKind, self Fingerprint) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if i, ok := g.index[id]; ok {
		n := &g.slots[i].node
		if n.Kind != kind || n.Self != self {
			n.Kind = kind
			n.Self = self
			g.generation++
		}
		return false
	}

	s := slot{
		node: Node{ID: id, Kind: kind, Self: self, Status: JobPending},
		live: true,
		out:  make(map[int]edgeMask),
		in:   make(map[int]edgeMask),
	}
	var i int
	if n := len(g.free); n > 0 {
		i = g.free[n-1]
		g.free = g.free[:n-1]
		g.slots[i] = s
	} else {
		i = len(g.slots)
		g.slots = append(g.slots, s)
	}
	g.index[id] = i
	g.generation++
	return true
}

// AddEdge records that from depends on to. A strict edge that would close a
// cycle is rejected with a *CycleError and the graph is left untouched.
func (g *ContentGraph) AddEdge(from, to NodeID, kind EdgeKind) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	fi, err := g.lookup(from, "cannot add edge")
	if err != nil {
		return err
	}
	ti, err := g.lookup(to, "cannot add edge")
	if err != nil {
		return err
	}

	if g.slots[fi].out[ti].has(kind) {
		return nil
	}

	if kind.IsStrict() {
		if path := g.strictPath(ti, fi); path != nil {
			return &CycleError{Path: append(path, to)}
		}
		g.invalidateBelow(ti)
	}

	g.slots[fi].out[ti] |= edgeMask(kind)
	g.slots[ti].in[fi] |= edgeMask(kind)
	g.generation++
	return nil
}

// RemoveEdge deletes one edge. It reports whether the edge existed.
func (g *ContentGraph) RemoveEdge(from, to NodeID, kind EdgeKind) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	fi, ok := g.index[from]
	if !ok {
		return false
	}
	ti, ok := g.index[to]
	if !ok {
		return false
	}
	mask := g.slots[fi].out[ti]
	if !mask.has(kind) {
		return false
	}

	if kind.IsStrict() {
		g.invalidateBelow(ti)
	}

	mask &^= edgeMask(kind)
	if mask == 0 {
		delete(g.slots[fi].out, ti)
		delete(g.slots[ti].in, fi)
	} else {
		g.slots[fi].out[ti] = mask
		g.slots[ti].in[fi] = mask
	}
	g.generation++
	return true
}

// RemoveNode deletes a node and every edge touching it.
func (g *ContentGraph) RemoveNode(id NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	i, err := g.lookup(id, "cannot remove node")
	if err != nil {
		return err
	}

	g.invalidateBelow(i)

	for dep := range g.slots[i].out {
		delete(g.slots[dep].in, i)
	}
	for consumer := range g.slots[i].in {
		delete(g.slots[consumer].out, i)
	}

	g.slots[i] = slot{}
	g.free = append(g.free, i)
	delete(g.index, id)
	g.generation++
	return nil
}

// SetOutcome records the result of a build pass on the node.
func (g *ContentGraph) SetOutcome(id NodeID, o Outcome) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	i, err := g.lookup(id, "cannot record outcome")
	if err != nil {
		return err
	}
	n := &g.slots[i].node
	n.Combined = o.Combined
	n.Status = o.Status
	n.Output = o.Output
	n.Err = o.Err
	return nil
}

// Node returns a copy of the node.
func (g *ContentGraph) Node(id NodeID) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.slots[i].node, true
}

// Has reports whether the node exists.
func (g *ContentGraph) Has(id NodeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.index[id]
	return ok
}

// Nodes yields copies of all nodes ordered by ID.
func (g *ContentGraph) Nodes() iter.Seq[Node] {
	g.mu.RLock()
	nodes := make([]Node, 0, len(g.index))
	for _, i := range g.index {
		nodes = append(nodes, g.slots[i].node)
	}
	g.mu.RUnlock()

	slices.SortFunc(nodes, func(a, b Node) int { return a.ID.Compare(b.ID) })

	return func(yield func(Node) bool) {
		for _, n := range nodes {
			if !yield(n) {
				return
			}
		}
	}
}

// Edges yields every edge ordered by (From, To, Kind).
func (g *ContentGraph) Edges() iter.Seq[Edge] {
	g.mu.RLock()
	var edges []Edge
	for id, i := range g.index {
		for dep, mask := range g.slots[i].out {
			for _, k := range AllEdgeKinds() {
				if mask.has(k) {
					edges = append(edges, Edge{From: id, To: g.slots[dep].node.ID, Kind: k})
				}
			}
		}
	}
	g.mu.RUnlock()

	slices.SortFunc(edges, compareEdges)

	return func(yield func(Edge) bool) {
		for _, e := range edges {
			if !yield(e) {
				return
			}
		}
	}
}

// EdgesFrom returns the outgoing edges of a node ordered by (To, Kind).
func (g *ContentGraph) EdgesFrom(id NodeID) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	i, ok := g.index[id]
	if !ok {
		return nil
	}
	var edges []Edge
	for dep, mask := range g.slots[i].out {
		for _, k := range AllEdgeKinds() {
			if mask.has(k) {
				edges = append(edges, Edge{From: id, To: g.slots[dep].node.ID, Kind: k})
			}
		}
	}
	slices.SortFunc(edges, compareEdges)
	return edges
}

// Dependencies returns the direct strict dependencies of a node.
func (g *ContentGraph) Dependencies(id NodeID) []NodeID {
	return g.neighbors(id, func(s *slot) map[int]edgeMask { return s.out }, edgeMask.strict)
}

// References returns the direct soft (content-reference) targets of a node.
func (g *ContentGraph) References(id NodeID) []NodeID {
	return g.neighbors(id, func(s *slot) map[int]edgeMask { return s.out }, edgeMask.soft)
}

// Dependents returns the nodes that directly and strictly depend on id.
func (g *ContentGraph) Dependents(id NodeID) []NodeID {
	return g.neighbors(id, func(s *slot) map[int]edgeMask { return s.in }, edgeMask.strict)
}

// Referrers returns the nodes that softly reference id, i.e. its backlinks.
func (g *ContentGraph) Referrers(id NodeID) []NodeID {
	return g.neighbors(id, func(s *slot) map[int]edgeMask { return s.in }, edgeMask.soft)
}

func (g *ContentGraph) neighbors(id NodeID, adj func(*slot) map[int]edgeMask, keep func(edgeMask) bool) []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	i, ok := g.index[id]
	if !ok {
		return nil
	}
	var ids []NodeID
	for j, mask := range adj(&g.slots[i]) {
		if keep(mask) {
			ids = append(ids, g.slots[j].node.ID)
		}
	}
	slices.SortFunc(ids, NodeID.Compare)
	return ids
}

// DependentsOf returns the transitive closure of strict dependents of id, i.e.
// its impact set. Results are memoized until a mutation affects them.
func (g *ContentGraph) DependentsOf(id NodeID) ([]NodeID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	i, err := g.lookup(id, "cannot compute dependents")
	if err != nil {
		return nil, err
	}

	g.memoMu.Lock()
	cached, ok := g.closure[i]
	g.memoMu.Unlock()
	if ok {
		return slices.Clone(cached), nil
	}

	seen := map[int]bool{i: true}
	queue := []int{i}
	var ids []NodeID
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for consumer, mask := range g.slots[cur].in {
			if !mask.strict() || seen[consumer] {
				continue
			}
			seen[consumer] = true
			ids = append(ids, g.slots[consumer].node.ID)
			queue = append(queue, consumer)
		}
	}
	slices.SortFunc(ids, NodeID.Compare)

	g.memoMu.Lock()
	g.closure[i] = ids
	g.memoMu.Unlock()

	return slices.Clone(ids), nil
}

// DetectCycles returns every strict-edge cycle as an ordered path whose first
// node is repeated at the end. A graph built only through AddEdge has none.
func (g *ContentGraph) DetectCycles() [][]NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[int]int, len(g.index))
	var path []int
	var cycles [][]NodeID
	seen := make(map[string]bool)

	var visit func(u int)
	visit = func(u int) {
		state[u] = visiting
		path = append(path, u)

		for _, v := range g.sortedOut(u) {
			switch state[v] {
			case visiting:
				start := slices.Index(path, v)
				cycle := make([]NodeID, 0, len(path)-start+1)
				for _, p := range path[start:] {
					cycle = append(cycle, g.slots[p].node.ID)
				}
				cycle = append(cycle, g.slots[v].node.ID)
				if key := cycleKey(cycle); !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			case unvisited:
				visit(v)
			}
		}

		path = path[:len(path)-1]
		state[u] = visited
	}

	for _, u := range g.sortedSlots() {
		if state[u] == unvisited {
			visit(u)
		}
	}
	return cycles
}

// TopologicalOrder returns all nodes with every strict dependency ahead of its
// consumers. Ties are broken by ID so the order is deterministic.
func (g *ContentGraph) TopologicalOrder() ([]NodeID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	inDegree := make(map[int]int, len(g.index))
	var ready []int
	for _, i := range g.sortedSlots() {
		for _, mask := range g.slots[i].out {
			if mask.strict() {
				inDegree[i]++
			}
		}
		if inDegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]NodeID, 0, len(g.index))
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		order = append(order, g.slots[cur].node.ID)

		var next []int
		for consumer, mask := range g.slots[cur].in {
			if !mask.strict() {
				continue
			}
			inDegree[consumer]--
			if inDegree[consumer] == 0 {
				next = append(next, consumer)
			}
		}
		ready = append(ready, next...)
		slices.SortFunc(ready, g.compareSlots)
	}

	if len(order) != len(g.index) {
		return nil, ErrCycleDetected
	}
	return order, nil
}

// lookup resolves an id to its slot. Callers must hold mu.
func (g *ContentGraph) lookup(id NodeID, msg string) (int, error) {
	i, ok := g.index[id]
	if !ok {
		return 0, zerr.With(zerr.Wrap(ErrUnknownNode, msg), "node", id.String())
	}
	return i, nil
}

// strictPath returns the node path from src to dst over strict dependency
// edges, or nil if dst is unreachable. Callers must hold mu.
func (g *ContentGraph) strictPath(src, dst int) []NodeID {
	if src == dst {
		return []NodeID{g.slots[src].node.ID}
	}
	parent := map[int]int{src: -1}
	queue := []int{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.sortedOut(cur) {
			if _, ok := parent[next]; ok {
				continue
			}
			parent[next] = cur
			if next == dst {
				var path []NodeID
				for at := dst; at != -1; at = parent[at] {
					path = append(path, g.slots[at].node.ID)
				}
				slices.Reverse(path)
				return path
			}
			queue = append(queue, next)
		}
	}
	return nil
}

// invalidateBelow drops the memoized impact set of i and of everything i
// strictly depends on, since all of those gain or lose dependents when an edge
// into i changes. Callers must hold mu.
func (g *ContentGraph) invalidateBelow(i int) {
	g.memoMu.Lock()
	defer g.memoMu.Unlock()

	if len(g.closure) == 0 {
		return
	}
	seen := map[int]bool{i: true}
	queue := []int{i}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		delete(g.closure, cur)
		for dep, mask := range g.slots[cur].out {
			if mask.strict() && !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}
}

func (g *ContentGraph) sortedOut(i int) []int {
	var deps []int
	for dep, mask := range g.slots[i].out {
		if mask.strict() {
			deps = append(deps, dep)
		}
	}
	slices.SortFunc(deps, g.compareSlots)
	return deps
}

func (g *ContentGraph) sortedSlots() []int {
	slots := make([]int, 0, len(g.index))
	for _, i := range g.index {
		slots = append(slots, i)
	}
	slices.SortFunc(slots, g.compareSlots)
	return slots
}

func (g *ContentGraph) compareSlots(a, b int) int {
	return g.slots[a].node.ID.Compare(g.slots[b].node.ID)
}

func compareEdges(a, b Edge) int {
	if c := a.From.Compare(b.From); c != 0 {
		return c
	}
	if c := a.To.Compare(b.To); c != 0 {
		return c
	}
	return int(a.Kind) - int(b.Kind)
}

// cycleKey identifies a cycle independent of the node it was entered from.
func cycleKey(cycle []NodeID) string {
	ring := cycle[:len(cycle)-1]
	minAt := 0
	for i := range ring {
		if ring[i].Compare(ring[minAt]) < 0 {
			minAt = i
		}
	}
	parts := make([]string, 0, len(ring))
	for i := range ring {
		parts = append(parts, ring[(minAt+i)%len(ring)].String())
	}
	return strings.Join(parts, "\x00")
}
