package aag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertSymmetric checks b ∈ Neighbors(a) ⇔ a ∈ Neighbors(b) over all faces.
func assertSymmetric(t *testing.T, g *Graph) {
	t.Helper()
	for a := 1; a <= 7; a++ {
		if !g.HasFace(a) {
			continue
		}
		na, err := g.Neighbors(a)
		require.NoError(t, err)
		for b := range na {
			nb, err := g.Neighbors(b)
			require.NoError(t, err)
			assert.True(t, nb.Has(a), "%d lists %d but not the reverse", a, b)
		}
	}
}

// assertPartition checks that comps are disjoint, cover the visible nodes and
// that no visible arc crosses two components.
func assertPartition(t *testing.T, g *Graph, comps []IDSet) {
	t.Helper()
	owner := make(map[int]int)
	for i, c := range comps {
		require.NotZero(t, c.Len())
		for id := range c {
			_, dup := owner[id]
			assert.False(t, dup, "face %d in two components", id)
			owner[id] = i
		}
	}
	assert.Len(t, owner, g.NumNodes())
	for _, id := range g.Nodes() {
		assert.Contains(t, owner, id)
	}
	for _, a := range g.Arcs() {
		assert.Equal(t, owner[a.F1], owner[a.F2], "arc %v crosses components", a)
	}
}

func TestScopeRestrictsReads(t *testing.T) {
	g := build(t, blockShape(t))

	g.PushSubgraph(NewIDSet(bottom, top, front, 99))
	assert.Equal(t, 1, g.ScopeDepth())
	assert.Equal(t, []int{bottom, top, front}, g.Nodes())
	assert.Equal(t, 3, g.NumNodes())

	nbs, err := g.Neighbors(top)
	require.NoError(t, err)
	assert.Equal(t, []int{front}, nbs.Sorted())

	// Registered but out of scope: no error, nothing visible.
	nbs, err = g.Neighbors(back)
	require.NoError(t, err)
	assert.Empty(t, nbs)
	assert.False(t, g.HasArc(top, back))
	assert.Len(t, g.Arcs(), 2)

	// Unknown ids still fail under a scope.
	_, err = g.Neighbors(99)
	assert.ErrorIs(t, err, ErrUnknownFace)

	g.PushSubgraphX(NewIDSet(front))
	assert.Equal(t, []int{bottom, top}, g.Nodes())
	assert.Empty(t, g.Arcs())

	require.NoError(t, g.PopSubgraph())
	assert.Equal(t, []int{bottom, top, front}, g.Nodes())
	require.NoError(t, g.PopSubgraph())
	assert.Equal(t, 6, g.NumNodes())

	assert.ErrorIs(t, g.PopSubgraph(), ErrScopeUnderflow)
}

func TestPushSubgraphIgnoresOuterScope(t *testing.T) {
	g := build(t, blockShape(t))
	g.PushSubgraph(NewIDSet(top))
	g.PushSubgraph(NewIDSet(bottom, left))
	assert.Equal(t, []int{bottom, left}, g.Nodes())

	g.PopSubgraphs()
	assert.Zero(t, g.ScopeDepth())
	assert.Equal(t, 6, g.NumNodes())
}

func TestScopingDoesNotMutate(t *testing.T) {
	g := build(t, filletedShape(t))
	before := g.Arcs()

	g.PushSubgraphX(NewIDSet(blend))
	g.PushSubgraph(NewIDSet(top))
	g.PopSubgraphs()

	assert.Equal(t, before, g.Arcs())
	assert.Empty(t, g.Validate())
}

func TestScopeSymmetry(t *testing.T) {
	scopes := []struct {
		name string
		push func(g *Graph)
	}{
		{"unscoped", func(*Graph) {}},
		{"subset", func(g *Graph) { g.PushSubgraph(NewIDSet(top, front, blend, left)) }},
		{"exclude blend", func(g *Graph) { g.PushSubgraphX(NewIDSet(blend)) }},
		{"nested", func(g *Graph) {
			g.PushSubgraphX(NewIDSet(bottom))
			g.PushSubgraphX(NewIDSet(right, back))
		}},
	}
	for _, sc := range scopes {
		t.Run(sc.name, func(t *testing.T) {
			g := build(t, filletedShape(t))
			sc.push(g)
			assertSymmetric(t, g)
		})
	}
}

func TestConnectedComponents(t *testing.T) {
	tests := []struct {
		name  string
		push  func(g *Graph)
		count int
	}{
		{"whole solid", func(*Graph) {}, 1},
		{"opposite faces", func(g *Graph) { g.PushSubgraph(NewIDSet(top, bottom)) }, 2},
		{"blend alone", func(g *Graph) { g.PushSubgraph(NewIDSet(blend)) }, 1},
		{"sides without caps", func(g *Graph) { g.PushSubgraph(NewIDSet(top, blend, front, bottom)) }, 1},
		{"empty scope", func(g *Graph) { g.PushSubgraph(NewIDSet()) }, 0},
		{"caps only", func(g *Graph) { g.PushSubgraph(NewIDSet(left, right)) }, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, filletedShape(t))
			tt.push(g)
			comps := g.ConnectedComponents()
			assert.Len(t, comps, tt.count)
			assertPartition(t, g, comps)
		})
	}
}

func TestConnectedComponentsDiscoveryOrder(t *testing.T) {
	g := build(t, blockShape(t))
	g.PushSubgraph(NewIDSet(right, left, top))
	comps := g.ConnectedComponents()
	require.Len(t, comps, 1)

	g.PushSubgraph(NewIDSet(right, left))
	comps = g.ConnectedComponents()
	require.Len(t, comps, 2)
	assert.True(t, comps[0].Has(left), "lowest id seeds the first component")
	assert.True(t, comps[1].Has(right))
}
