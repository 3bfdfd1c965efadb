package aag

import (
	"sort"

	"github.com/chazu/defillet/pkg/dihedral"
	"github.com/chazu/defillet/pkg/kernel"
	"github.com/pkg/errors"
)

// NumNodes returns the number of faces visible in the active scope.
func (g *Graph) NumNodes() int { return len(g.scopeNodes()) }

// Nodes returns the visible face ids in ascending order.
func (g *Graph) Nodes() []int { return g.scopeNodes().Sorted() }

// Neighbors returns the visible faces adjacent to id. A registered face
// outside the active scope has no visible neighbours.
func (g *Graph) Neighbors(id int) (IDSet, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	out := make(IDSet)
	if !g.visible(id) {
		return out, nil
	}
	for n := range g.adj[id] {
		if g.visible(n) {
			out.Add(n)
		}
	}
	return out, nil
}

// NeighborsThru returns the visible faces adjacent to id across edge e. The
// result is empty when id does not bound e or the edge is not manifold.
func (g *Graph) NeighborsThru(id int, e kernel.Edge) (IDSet, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	eid, ok := g.edgeIDs[e]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEdge, "neighbours of face %d", id)
	}
	out := make(IDSet)
	if !g.visible(id) {
		return out, nil
	}
	for n := range g.adj[id] {
		if !g.visible(n) {
			continue
		}
		for _, x := range g.arcs[NewArc(id, n)].Edges {
			if x == eid {
				out.Add(n)
				break
			}
		}
	}
	return out, nil
}

// HasArc reports whether a visible arc joins a and b.
func (g *Graph) HasArc(a, b int) bool {
	_, ok := g.Arc(a, b)
	return ok
}

// Arc returns the attribute of the visible arc joining a and b.
func (g *Graph) Arc(a, b int) (ArcInfo, bool) {
	if !g.visible(a) || !g.visible(b) {
		return ArcInfo{}, false
	}
	info, ok := g.arcs[NewArc(a, b)]
	return info, ok
}

// Arcs returns the visible arcs ordered by (F1, F2).
func (g *Graph) Arcs() []Arc {
	var out []Arc
	for a := range g.arcs {
		if g.visible(a.F1) && g.visible(a.F2) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].F1 != out[j].F1 {
			return out[i].F1 < out[j].F1
		}
		return out[i].F2 < out[j].F2
	})
	return out
}

// uniform returns the visible faces whose visible arcs all have class c. A
// face without visible arcs does not qualify.
func (g *Graph) uniform(c dihedral.Class) IDSet {
	out := make(IDSet)
	for id := range g.scopeNodes() {
		n := 0
		ok := true
		for nb := range g.adj[id] {
			if !g.visible(nb) {
				continue
			}
			n++
			if g.arcs[NewArc(id, nb)].Angle != c {
				ok = false
				break
			}
		}
		if ok && n > 0 {
			out.Add(id)
		}
	}
	return out
}

// FindConvexOnly returns the visible faces all of whose arcs are convex.
func (g *Graph) FindConvexOnly() IDSet { return g.uniform(dihedral.Convex) }

// FindConcaveOnly returns the visible faces all of whose arcs are concave.
func (g *Graph) FindConcaveOnly() IDSet { return g.uniform(dihedral.Concave) }

// FindBaseOnly returns the visible faces that are neither convex-only nor
// concave-only and carry no blend candidate attribute.
func (g *Graph) FindBaseOnly() IDSet {
	out := g.scopeNodes()
	out.Subtract(g.FindConvexOnly())
	out.Subtract(g.FindConcaveOnly())
	for id := range out {
		if _, ok := g.attrs[id][AttrBlendCandidate]; ok {
			out.Remove(id)
		}
	}
	return out
}
