package aag

import (
	"sort"

	"github.com/chazu/defillet/pkg/dihedral"
	"github.com/chazu/defillet/pkg/kernel"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// Arc is an unordered pair of adjacent face ids, normalised so F1 < F2.
type Arc struct {
	F1 int `json:"f1"`
	F2 int `json:"f2"`
}

// NewArc returns the arc joining a and b. NewArc(a, b) == NewArc(b, a).
func NewArc(a, b int) Arc {
	if a > b {
		a, b = b, a
	}
	return Arc{F1: a, F2: b}
}

// Other returns the endpoint of a opposite to id.
func (a Arc) Other(id int) int {
	if a.F1 == id {
		return a.F2
	}
	return a.F1
}

// ArcInfo is the attribute carried by an arc.
type ArcInfo struct {
	Angle   dihedral.Class `json:"angle"`
	Radians float64        `json:"radians"`
	// Edges are the ids of the edges shared by the two faces.
	Edges []int `json:"edges"`
}

// Graph is an attributed adjacency graph over the faces of one shape.
type Graph struct {
	k     kernel.Kernel
	shape kernel.Shape

	allowSmooth bool
	smoothTol   float64

	faces   []kernel.Face // id-1 → face; nil once removed
	faceIDs map[kernel.Face]int
	edges   []kernel.Edge
	edgeIDs map[kernel.Edge]int

	nodes IDSet
	adj   map[int]IDSet
	arcs  map[Arc]ArcInfo
	attrs map[int]map[AttrType]NodeAttr

	selected IDSet
	scopes   []IDSet
}

// Option configures Build.
type Option func(*buildConfig)

type buildConfig struct {
	allowSmooth bool
	smoothTol   float64
	selected    []kernel.Face
}

// WithAllowSmooth controls whether faces joined only by tangent arcs count as
// connected in ConnectedComponents. Tangent arcs are recorded and classified
// Smooth either way.
func WithAllowSmooth(allow bool) Option {
	return func(c *buildConfig) { c.allowSmooth = allow }
}

// WithSmoothTolerance sets the angle in radians below which a join is tangent.
func WithSmoothTolerance(tol float64) Option {
	return func(c *buildConfig) { c.smoothTol = tol }
}

// WithSelectedFaces marks faces as selected in the built graph.
func WithSelectedFaces(faces ...kernel.Face) Option {
	return func(c *buildConfig) { c.selected = append(c.selected, faces...) }
}

// Build constructs the graph of shape. Every face becomes a node; every edge
// bounded by exactly two distinct faces contributes to the arc between them,
// which is classified once over all of its shared edges.
func Build(k kernel.Kernel, shape kernel.Shape, opts ...Option) (*Graph, error) {
	if k == nil || shape == nil {
		return nil, ErrNilShape
	}
	cfg := buildConfig{allowSmooth: true, smoothTol: dihedral.DefaultSmoothTolerance}
	for _, o := range opts {
		o(&cfg)
	}

	g := &Graph{
		k:           k,
		shape:       shape,
		allowSmooth: cfg.allowSmooth,
		smoothTol:   cfg.smoothTol,
		faceIDs:     make(map[kernel.Face]int),
		edgeIDs:     make(map[kernel.Edge]int),
		nodes:       make(IDSet),
		adj:         make(map[int]IDSet),
		arcs:        make(map[Arc]ArcInfo),
		attrs:       make(map[int]map[AttrType]NodeAttr),
		selected:    make(IDSet),
	}

	g.faces = k.Faces(shape)
	for i, f := range g.faces {
		id := i + 1
		g.faceIDs[f] = id
		g.nodes.Add(id)
		g.adj[id] = make(IDSet)
	}
	g.edges = k.Edges(shape)
	for i, e := range g.edges {
		g.edgeIDs[e] = i + 1
	}

	shared := make(map[Arc][]int)
	var order []Arc
	for i, e := range g.edges {
		fs := k.EdgeFaces(shape, e)
		if len(fs) != 2 {
			continue
		}
		a, okA := g.faceIDs[fs[0]]
		b, okB := g.faceIDs[fs[1]]
		if !okA || !okB || a == b {
			continue
		}
		arc := NewArc(a, b)
		if _, seen := shared[arc]; !seen {
			order = append(order, arc)
		}
		shared[arc] = append(shared[arc], i+1)
	}

	for _, arc := range order {
		res := dihedral.Classify(k, shape, g.faces[arc.F1-1], g.faces[arc.F2-1], true, cfg.smoothTol)
		g.arcs[arc] = ArcInfo{Angle: res.Angle, Radians: res.Radians, Edges: shared[arc]}
		g.adj[arc.F1].Add(arc.F2)
		g.adj[arc.F2].Add(arc.F1)
	}

	for _, f := range cfg.selected {
		if id, ok := g.faceIDs[f]; ok {
			g.selected.Add(id)
		}
	}

	klog.V(2).Infof("aag: built %d nodes, %d arcs over %d edges", len(g.faces), len(g.arcs), len(g.edges))
	return g, nil
}

// Kernel returns the kernel the graph was built with.
func (g *Graph) Kernel() kernel.Kernel { return g.k }

// Shape returns the shape the graph was built from.
func (g *Graph) Shape() kernel.Shape { return g.shape }

// AllowSmooth reports whether tangent joins connect faces in ConnectedComponents.
func (g *Graph) AllowSmooth() bool { return g.allowSmooth }

// SmoothTolerance returns the tangency tolerance used at construction.
func (g *Graph) SmoothTolerance() float64 { return g.smoothTol }

// HasFace reports whether id is registered in the full graph.
func (g *Graph) HasFace(id int) bool { return g.nodes.Has(id) }

func (g *Graph) check(id int) error {
	if !g.nodes.Has(id) {
		return errors.Wrapf(ErrUnknownFace, "face %d", id)
	}
	return nil
}

// Face returns the kernel face with the given id.
func (g *Graph) Face(id int) (kernel.Face, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	return g.faces[id-1], nil
}

// FaceID returns the id of f.
func (g *Graph) FaceID(f kernel.Face) (int, bool) {
	id, ok := g.faceIDs[f]
	return id, ok
}

// NumEdges returns the number of edges of the shape.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Edge returns the kernel edge with the given 1-based id.
func (g *Graph) Edge(id int) (kernel.Edge, error) {
	if id < 1 || id > len(g.edges) {
		return nil, errors.Wrapf(ErrUnknownEdge, "edge %d", id)
	}
	return g.edges[id-1], nil
}

// EdgeID returns the id of e.
func (g *Graph) EdgeID(e kernel.Edge) (int, bool) {
	id, ok := g.edgeIDs[e]
	return id, ok
}

// SetSelected replaces the selection marker set. Unknown ids are rejected.
func (g *Graph) SetSelected(ids IDSet) error {
	for id := range ids {
		if err := g.check(id); err != nil {
			return err
		}
	}
	g.selected = ids.Clone()
	return nil
}

// Selected returns a copy of the selection marker set.
func (g *Graph) Selected() IDSet { return g.selected.Clone() }

// IsSelected reports whether id is selected.
func (g *Graph) IsSelected(id int) bool { return g.selected.Has(id) }

// SetNodeAttribute attaches a to face id. It returns false, leaving the node
// unchanged, when the node already carries an attribute of the same type.
func (g *Graph) SetNodeAttribute(id int, a NodeAttr) (bool, error) {
	if err := g.check(id); err != nil {
		return false, err
	}
	bag := g.attrs[id]
	if bag == nil {
		bag = make(map[AttrType]NodeAttr)
		g.attrs[id] = bag
	}
	if _, ok := bag[a.AttrType()]; ok {
		return false, nil
	}
	bag[a.AttrType()] = a
	return true, nil
}

// NodeAttribute returns the attribute of type t on face id, or nil.
func (g *Graph) NodeAttribute(id int, t AttrType) (NodeAttr, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	return g.attrs[id][t], nil
}

// HasNodeAttributes reports whether face id carries any attribute.
func (g *Graph) HasNodeAttributes(id int) (bool, error) {
	if err := g.check(id); err != nil {
		return false, err
	}
	return len(g.attrs[id]) > 0, nil
}

// NodeAttributes returns the attributes of face id ordered by type.
func (g *Graph) NodeAttributes(id int) ([]NodeAttr, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	bag := g.attrs[id]
	out := make([]NodeAttr, 0, len(bag))
	for _, a := range bag {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttrType() < out[j].AttrType() })
	return out, nil
}

// RemoveNodeAttribute deletes the attribute of type t from face id and
// reports whether one was present.
func (g *Graph) RemoveNodeAttribute(id int, t AttrType) (bool, error) {
	if err := g.check(id); err != nil {
		return false, err
	}
	if _, ok := g.attrs[id][t]; !ok {
		return false, nil
	}
	delete(g.attrs[id], t)
	return true, nil
}
