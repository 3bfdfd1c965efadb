// Package kernel defines the abstract B-Rep kernel interface consumed by the
// blend suppression core. Implementations own shape representation, surface
// evaluation and the geometric construction that cuts a blend chain out of a
// solid. The core only ever talks to a kernel through this interface, so
// backends can be swapped without touching the graph or driver code.
package kernel

import (
	"context"
	"errors"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	// ErrUnsupportedSurface is returned by Surface when the kernel cannot
	// evaluate curvature for a face (freeform or unknown surface type).
	ErrUnsupportedSurface = errors.New("unsupported surface type")

	// ErrExcisionFailed is returned by Excise when valid geometry cannot be
	// reconstructed around the removed faces.
	ErrExcisionFailed = errors.New("excision failed")
)

// Shape is an opaque handle to a kernel solid.
// Implementations wrap their internal representation.
type Shape interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// TopoKind distinguishes the topological sub-shapes of a solid.
type TopoKind int

const (
	TopoVertex TopoKind = iota
	TopoEdge
	TopoFace
)

func (k TopoKind) String() string {
	switch k {
	case TopoVertex:
		return "vertex"
	case TopoEdge:
		return "edge"
	case TopoFace:
		return "face"
	default:
		return "unknown"
	}
}

// SubShape is a topological element owned by a Shape. Sub-shapes are compared
// by identity: an element left untouched by a modeling operation keeps the same
// value in the resulting shape, which is what lets callers track faces across
// graph rebuilds.
type SubShape interface {
	TopoKind() TopoKind
}

// Face is a bounded surface patch of a solid.
type Face interface {
	SubShape
}

// Edge is a bounded curve shared by (usually two) faces.
type Edge interface {
	SubShape
}

// Kernel is the abstract B-Rep kernel interface.
type Kernel interface {
	// Faces enumerates the faces of s. The order is stable for a given shape;
	// position i corresponds to the 1-based index i+1.
	Faces(s Shape) []Face
	// Edges enumerates the edges of s in a stable order.
	Edges(s Shape) []Edge
	// EdgeFaces returns the faces of s bounded by e.
	EdgeFaces(s Shape, e Edge) []Face
	// FaceEdges returns the edges bounding f in s.
	FaceEdges(s Shape, f Face) []Edge

	// EdgeSample returns a representative point on e and the unit tangent of
	// the edge's own parameterisation at that point.
	EdgeSample(e Edge) (p, tangent v3.Vec, ok bool)
	// EdgeSense reports how f's boundary loop traverses e: +1 along the edge
	// tangent, -1 against it, 0 when e does not bound f. Loops run
	// counter-clockwise when viewed against the outward normal.
	EdgeSense(s Shape, f Face, e Edge) int
	// FaceNormal evaluates the outward unit normal of f at (or near) p,
	// respecting face orientation.
	FaceNormal(f Face, p v3.Vec) (v3.Vec, bool)
	// Surface reports the surface type and curvature radius of f. Faces the
	// kernel cannot characterise yield ErrUnsupportedSurface.
	Surface(f Face) (SurfaceInfo, error)

	// Excise removes the given chain of faces from s and recaps the gap,
	// returning the new shape and the history of sub-shape transitions.
	// Implementations wrap ErrExcisionFailed when the geometry cannot be
	// reconstructed.
	Excise(ctx context.Context, s Shape, chain []Face) (Shape, *History, error)
}
