// Package dihedral classifies the join between two adjacent faces of a solid
// as convex, concave or smooth by comparing their outward normals along the
// edges they share.
package dihedral

import (
	"fmt"
	"math"

	"github.com/chazu/defillet/pkg/kernel"
)

// DefaultSmoothTolerance is the angle in radians below which two normals are
// treated as tangent.
const DefaultSmoothTolerance = 1e-3

// crossTol guards the convexity sign test against near-tangent noise.
const crossTol = 1e-9

// Class is the dihedral classification of an arc.
type Class int

const (
	Undefined Class = iota // no stable edge/normal pair could be evaluated
	Convex                 // surfaces bend away from material
	Concave                // surfaces bend into material
	Smooth                 // tangent (G1) join
)

func (c Class) String() string {
	switch c {
	case Convex:
		return "convex"
	case Concave:
		return "concave"
	case Smooth:
		return "smooth"
	default:
		return "undefined"
	}
}

// MarshalText renders the class name in JSON dumps.
func (c Class) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText parses a name written by MarshalText.
func (c *Class) UnmarshalText(b []byte) error {
	for _, v := range []Class{Undefined, Convex, Concave, Smooth} {
		if v.String() == string(b) {
			*c = v
			return nil
		}
	}
	return fmt.Errorf("dihedral: unknown class %q", b)
}

// Result is the outcome of classifying one face pair.
type Result struct {
	Angle       Class
	CommonEdges []kernel.Edge
	// Radians is the largest angle between the face normals over the
	// evaluated edges.
	Radians float64
}

// CommonEdges returns the edges of s bounding both f and g, in f's edge order.
func CommonEdges(k kernel.Kernel, s kernel.Shape, f, g kernel.Face) []kernel.Edge {
	var out []kernel.Edge
	for _, e := range k.FaceEdges(s, f) {
		for _, h := range k.EdgeFaces(s, e) {
			if h == g {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Classify evaluates the dihedral class of the join between f and g. Each
// common edge is sampled once; the tangent there is oriented by the edge's
// sense in f's boundary loop and the two outward normals are compared. All
// evaluated edges must agree, otherwise the result is Undefined. Classify
// never fails: degenerate input yields Undefined.
func Classify(k kernel.Kernel, s kernel.Shape, f, g kernel.Face, allowSmooth bool, smoothTol float64) Result {
	res := Result{CommonEdges: CommonEdges(k, s, f, g)}
	if f == g {
		return res
	}

	agreed := Undefined
	for _, e := range res.CommonEdges {
		c, angle := classifyEdge(k, s, f, g, e, allowSmooth, smoothTol)
		if c == Undefined {
			continue
		}
		if agreed != Undefined && agreed != c {
			res.Angle = Undefined
			return res
		}
		agreed = c
		res.Radians = math.Max(res.Radians, angle)
	}
	res.Angle = agreed
	return res
}

func classifyEdge(k kernel.Kernel, s kernel.Shape, f, g kernel.Face, e kernel.Edge, allowSmooth bool, smoothTol float64) (Class, float64) {
	p, t, ok := k.EdgeSample(e)
	if !ok {
		return Undefined, 0
	}
	sense := k.EdgeSense(s, f, e)
	if sense == 0 {
		return Undefined, 0
	}
	nf, okF := k.FaceNormal(f, p)
	ng, okG := k.FaceNormal(g, p)
	if !okF || !okG {
		return Undefined, 0
	}

	angle := math.Acos(math.Max(-1, math.Min(1, nf.Dot(ng))))
	if angle < smoothTol {
		if allowSmooth {
			return Smooth, angle
		}
		return Undefined, angle
	}

	turn := nf.Cross(ng).Dot(t.MulScalar(float64(sense)))
	switch {
	case turn > crossTol:
		return Convex, angle
	case turn < -crossTol:
		return Concave, angle
	default:
		return Undefined, angle
	}
}
