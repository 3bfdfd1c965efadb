package aag

import (
	"github.com/chazu/defillet/pkg/dihedral"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// ConnectedComponents partitions the visible faces into connected components
// by breadth-first traversal over visible arcs. When the graph was built
// without smooth adjacency, Smooth arcs do not connect faces. Components are
// returned in discovery order, seeded from the lowest unvisited id.
func (g *Graph) ConnectedComponents() []IDSet {
	if g.allowSmooth {
		return g.ComponentsVia(nil)
	}
	return g.ComponentsVia(func(info ArcInfo) bool { return info.Angle != dihedral.Smooth })
}

// ComponentsVia is ConnectedComponents over the visible arcs accepted by
// follow. A nil follow accepts every arc.
func (g *Graph) ComponentsVia(follow func(ArcInfo) bool) []IDSet {
	var comps []IDSet
	seen := make(IDSet)
	for _, seed := range g.Nodes() {
		if seen.Has(seed) {
			continue
		}
		comp := make(IDSet)
		q := linkedlistqueue.New()
		q.Enqueue(seed)
		seen.Add(seed)
		for !q.Empty() {
			v, _ := q.Dequeue()
			id := v.(int)
			comp.Add(id)
			for nb := range g.adj[id] {
				if !g.visible(nb) || seen.Has(nb) {
					continue
				}
				if follow != nil && !follow(g.arcs[NewArc(id, nb)]) {
					continue
				}
				seen.Add(nb)
				q.Enqueue(nb)
			}
		}
		comps = append(comps, comp)
	}
	return comps
}
