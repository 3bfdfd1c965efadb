// Package analytic implements the kernel.Kernel interface over a small
// analytic boundary representation: planar and cylindrical faces bounded by
// line and circular-arc edges. It is the reference backend for the blend
// suppression core and supports exactly the constructions needed to create and
// remove rolling-ball fillets on polyhedral solids.
//
// Solids are immutable. Every operation returns a new Solid; faces, edges and
// vertices untouched by the operation are shared by pointer with the input, so
// their identity survives the edit.
package analytic

import (
	"fmt"
	"math"

	"github.com/chazu/defillet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var (
	_ kernel.Shape    = (*Solid)(nil)
	_ kernel.SubShape = (*Face)(nil)
	_ kernel.SubShape = (*Edge)(nil)
	_ kernel.SubShape = (*Vertex)(nil)
)

// Vertex is a point of the solid.
type Vertex struct {
	P v3.Vec
}

// TopoKind implements kernel.SubShape.
func (*Vertex) TopoKind() kernel.TopoKind { return kernel.TopoVertex }

type curveKind int

const (
	curveLine curveKind = iota
	curveArc
)

// Edge is a line segment or a circular arc between two vertices. The edge's
// parameterisation runs from V1 to V2.
type Edge struct {
	V1, V2 *Vertex
	kind   curveKind
	center v3.Vec // arcs only
	radius float64
}

// TopoKind implements kernel.SubShape.
func (*Edge) TopoKind() kernel.TopoKind { return kernel.TopoEdge }

// IsArc reports whether the edge is a circular arc.
func (e *Edge) IsArc() bool { return e.kind == curveArc }

// sample returns the midpoint of the edge and the unit tangent there.
func (e *Edge) sample() (p, t v3.Vec, ok bool) {
	t, ok = unit(e.V2.P.Sub(e.V1.P))
	if !ok {
		return v3.Vec{}, v3.Vec{}, false
	}
	if e.kind == curveLine {
		return e.V1.P.Add(e.V2.P).MulScalar(0.5), t, true
	}
	// For an arc under a half turn the chord is parallel to the tangent at
	// the arc midpoint.
	bis, ok := unit(e.V1.P.Sub(e.center).Add(e.V2.P.Sub(e.center)))
	if !ok {
		return v3.Vec{}, v3.Vec{}, false
	}
	return e.center.Add(bis.MulScalar(e.radius)), t, true
}

// surface describes the geometry carried by a face.
type surface struct {
	kind   kernel.SurfaceKind
	origin v3.Vec // plane point or cylinder axis point
	dir    v3.Vec // outward plane normal or cylinder axis
	radius float64
	convex bool // cylinder: material inside the cylinder
}

// Face is a planar or cylindrical patch.
type Face struct {
	Name   string
	surf   surface
	locked bool // boundary the kernel must not extend or trim
}

// TopoKind implements kernel.SubShape.
func (*Face) TopoKind() kernel.TopoKind { return kernel.TopoFace }

// Kind returns the surface kind of the face.
func (f *Face) Kind() kernel.SurfaceKind { return f.surf.kind }

// Locked reports whether the face refuses modification by Excise.
func (f *Face) Locked() bool { return f.locked }

// clone returns a copy of f with a new identity.
func (f *Face) clone() *Face {
	c := *f
	return &c
}

// normalAt evaluates the outward unit normal at p.
func (f *Face) normalAt(p v3.Vec) (v3.Vec, bool) {
	switch f.surf.kind {
	case kernel.SurfaceCylinder:
		rel := p.Sub(f.surf.origin)
		radial, ok := unit(rel.Sub(f.surf.dir.MulScalar(rel.Dot(f.surf.dir))))
		if !ok {
			return v3.Vec{}, false
		}
		if !f.surf.convex {
			radial = radial.MulScalar(-1)
		}
		return radial, true
	default:
		// Planes, and freeform faces which this kernel stores as planes.
		return f.surf.dir, true
	}
}

// use records that a face's boundary loop traverses an edge with a sense.
type use struct {
	face  *Face
	sense int
}

// Solid is a closed, consistently oriented boundary representation.
type Solid struct {
	faces []*Face
	edges []*Edge
	uses  map[*Edge][]use

	faceEdges map[*Face][]*Edge
}

// newSolid assembles a solid and builds its face→edge index.
func newSolid(faces []*Face, edges []*Edge, uses map[*Edge][]use) *Solid {
	s := &Solid{
		faces:     faces,
		edges:     edges,
		uses:      uses,
		faceEdges: make(map[*Face][]*Edge, len(faces)),
	}
	for _, e := range edges {
		for _, u := range uses[e] {
			s.faceEdges[u.face] = append(s.faceEdges[u.face], e)
		}
	}
	return s
}

// NumFaces returns the number of faces.
func (s *Solid) NumFaces() int { return len(s.faces) }

// NumEdges returns the number of edges.
func (s *Solid) NumEdges() int { return len(s.edges) }

// Faces returns the faces in index order.
func (s *Solid) Faces() []*Face { return append([]*Face(nil), s.faces...) }

// Edges returns the edges in index order.
func (s *Solid) Edges() []*Edge { return append([]*Edge(nil), s.edges...) }

// BoundingBox returns the axis-aligned bounding box of the solid's vertices.
func (s *Solid) BoundingBox() (min, max [3]float64) {
	min = [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, e := range s.edges {
		for _, v := range []*Vertex{e.V1, e.V2} {
			p := [3]float64{v.P.X, v.P.Y, v.P.Z}
			for i := range p {
				min[i] = math.Min(min[i], p[i])
				max[i] = math.Max(max[i], p[i])
			}
		}
	}
	return min, max
}

// facesOf returns the faces bounded by e.
func (s *Solid) facesOf(e *Edge) []*Face {
	us := s.uses[e]
	out := make([]*Face, 0, len(us))
	for _, u := range us {
		out = append(out, u.face)
	}
	return out
}

// senseOf returns the sense of e in f's loop, or 0.
func (s *Solid) senseOf(f *Face, e *Edge) int {
	for _, u := range s.uses[e] {
		if u.face == f {
			return u.sense
		}
	}
	return 0
}

// other returns the face across e from f, or nil.
func (s *Solid) other(e *Edge, f *Face) *Face {
	for _, u := range s.uses[e] {
		if u.face != f {
			return u.face
		}
	}
	return nil
}

// edgesAt returns the edges incident to v.
func (s *Solid) edgesAt(v *Vertex) []*Edge {
	var out []*Edge
	for _, e := range s.edges {
		if e.V1 == v || e.V2 == v {
			out = append(out, e)
		}
	}
	return out
}

// Check verifies that the solid is a closed two-manifold with consistent
// orientation: every edge is shared by exactly two faces traversing it in
// opposite senses, and every face has a boundary.
func (s *Solid) Check() error {
	for i, e := range s.edges {
		us := s.uses[e]
		if len(us) != 2 {
			return fmt.Errorf("edge %d: bounded by %d faces, want 2", i+1, len(us))
		}
		if us[0].sense+us[1].sense != 0 || us[0].sense == 0 {
			return fmt.Errorf("edge %d: inconsistent orientation (%d, %d)", i+1, us[0].sense, us[1].sense)
		}
		if us[0].face == us[1].face {
			return fmt.Errorf("edge %d: seam edges are not supported", i+1)
		}
	}
	for i, f := range s.faces {
		if len(s.faceEdges[f]) == 0 {
			return fmt.Errorf("face %d: no boundary edges", i+1)
		}
	}
	return nil
}
