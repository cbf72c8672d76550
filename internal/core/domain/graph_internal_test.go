package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// forceEdge bypasses the cycle check to model a graph restored from a corrupt snapshot.
func (g *ContentGraph) forceEdge(from, to NodeID, kind EdgeKind) {
	fi, ti := g.index[from], g.index[to]
	g.slots[fi].out[ti] |= edgeMask(kind)
	g.slots[ti].in[fi] |= edgeMask(kind)
}

func TestDetectCycles_ReportsEachCycleOnce(t *testing.T) {
	g := NewContentGraph()
	for _, n := range []string{"A", "B", "C", "D"} {
		g.UpsertNode(NewNodeID(n), KindTemplate, Fingerprint{})
	}
	require.NoError(t, g.AddEdge(NewNodeID("A"), NewNodeID("B"), EdgeTemplateInclude))
	g.forceEdge(NewNodeID("B"), NewNodeID("A"), EdgeTemplateInclude)
	require.NoError(t, g.AddEdge(NewNodeID("C"), NewNodeID("D"), EdgeTemplateInclude))
	g.forceEdge(NewNodeID("D"), NewNodeID("C"), EdgePluginInput)
	// Soft edges never form reported cycles.
	g.forceEdge(NewNodeID("A"), NewNodeID("C"), EdgeContentReference)
	g.forceEdge(NewNodeID("C"), NewNodeID("A"), EdgeContentReference)

	cycles := g.DetectCycles()
	require.Len(t, cycles, 2)
	assert.Equal(t, NodeIDs("A", "B", "A"), cycles[0])
	assert.Equal(t, NodeIDs("C", "D", "C"), cycles[1])

	_, err := g.TopologicalOrder()
	assert.ErrorIs(t, err, ErrCycleDetected)
}
