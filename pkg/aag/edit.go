package aag

import "github.com/chazu/defillet/pkg/kernel"

// Remove deletes the given faces and their incident arcs from this graph in
// place. Ids of the remaining faces are unchanged and removed ids are never
// reused. Unknown ids fail the whole call before anything is removed.
func (g *Graph) Remove(ids IDSet) error {
	for id := range ids {
		if err := g.check(id); err != nil {
			return err
		}
	}
	for id := range ids {
		for nb := range g.adj[id] {
			delete(g.arcs, NewArc(id, nb))
			g.adj[nb].Remove(id)
		}
		delete(g.adj, id)
		delete(g.attrs, id)
		delete(g.faceIDs, g.faces[id-1])
		g.faces[id-1] = nil
		g.nodes.Remove(id)
		g.selected.Remove(id)
		for _, s := range g.scopes {
			s.Remove(id)
		}
	}
	return nil
}

// Copy returns a deep copy of the graph. The copy shares the kernel, the shape
// handle and the attribute values, none of which the graph mutates.
func (g *Graph) Copy() *Graph {
	c := &Graph{
		k:           g.k,
		shape:       g.shape,
		allowSmooth: g.allowSmooth,
		smoothTol:   g.smoothTol,
		faces:       append([]kernel.Face(nil), g.faces...),
		faceIDs:     make(map[kernel.Face]int, len(g.faceIDs)),
		edges:       append([]kernel.Edge(nil), g.edges...),
		edgeIDs:     make(map[kernel.Edge]int, len(g.edgeIDs)),
		nodes:       g.nodes.Clone(),
		adj:         make(map[int]IDSet, len(g.adj)),
		arcs:        make(map[Arc]ArcInfo, len(g.arcs)),
		attrs:       make(map[int]map[AttrType]NodeAttr, len(g.attrs)),
		selected:    g.selected.Clone(),
	}
	for f, id := range g.faceIDs {
		c.faceIDs[f] = id
	}
	for e, id := range g.edgeIDs {
		c.edgeIDs[e] = id
	}
	for id, nbs := range g.adj {
		c.adj[id] = nbs.Clone()
	}
	for a, info := range g.arcs {
		info.Edges = append([]int(nil), info.Edges...)
		c.arcs[a] = info
	}
	for id, bag := range g.attrs {
		cb := make(map[AttrType]NodeAttr, len(bag))
		for t, a := range bag {
			cb[t] = a
		}
		c.attrs[id] = cb
	}
	for _, s := range g.scopes {
		c.scopes = append(c.scopes, s.Clone())
	}
	return c
}
