package analytic

import (
	"context"
	"fmt"

	"github.com/chazu/defillet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Kernel adapts the analytic solids to kernel.Kernel.
type Kernel struct{}

var _ kernel.Kernel = Kernel{}

// New returns the analytic kernel.
func New() Kernel { return Kernel{} }

func solidOf(s kernel.Shape) *Solid {
	sol, _ := s.(*Solid)
	return sol
}

// Faces implements kernel.Kernel.
func (Kernel) Faces(s kernel.Shape) []kernel.Face {
	sol := solidOf(s)
	if sol == nil {
		return nil
	}
	out := make([]kernel.Face, len(sol.faces))
	for i, f := range sol.faces {
		out[i] = f
	}
	return out
}

// Edges implements kernel.Kernel.
func (Kernel) Edges(s kernel.Shape) []kernel.Edge {
	sol := solidOf(s)
	if sol == nil {
		return nil
	}
	out := make([]kernel.Edge, len(sol.edges))
	for i, e := range sol.edges {
		out[i] = e
	}
	return out
}

// EdgeFaces implements kernel.Kernel.
func (Kernel) EdgeFaces(s kernel.Shape, e kernel.Edge) []kernel.Face {
	sol, ae := solidOf(s), edgeOf(e)
	if sol == nil || ae == nil {
		return nil
	}
	var out []kernel.Face
	for _, f := range sol.facesOf(ae) {
		out = append(out, f)
	}
	return out
}

// FaceEdges implements kernel.Kernel.
func (Kernel) FaceEdges(s kernel.Shape, f kernel.Face) []kernel.Edge {
	sol, af := solidOf(s), faceOf(f)
	if sol == nil || af == nil {
		return nil
	}
	es := sol.faceEdges[af]
	out := make([]kernel.Edge, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// EdgeSample implements kernel.Kernel.
func (Kernel) EdgeSample(e kernel.Edge) (p, tangent v3.Vec, ok bool) {
	ae := edgeOf(e)
	if ae == nil {
		return v3.Vec{}, v3.Vec{}, false
	}
	return ae.sample()
}

// EdgeSense implements kernel.Kernel.
func (Kernel) EdgeSense(s kernel.Shape, f kernel.Face, e kernel.Edge) int {
	sol, af, ae := solidOf(s), faceOf(f), edgeOf(e)
	if sol == nil || af == nil || ae == nil {
		return 0
	}
	return sol.senseOf(af, ae)
}

// FaceNormal implements kernel.Kernel.
func (Kernel) FaceNormal(f kernel.Face, p v3.Vec) (v3.Vec, bool) {
	af := faceOf(f)
	if af == nil {
		return v3.Vec{}, false
	}
	return af.normalAt(p)
}

// Surface implements kernel.Kernel. Freeform faces yield
// kernel.ErrUnsupportedSurface.
func (Kernel) Surface(f kernel.Face) (kernel.SurfaceInfo, error) {
	af := faceOf(f)
	if af == nil {
		return kernel.SurfaceInfo{}, fmt.Errorf("%w: %T is not an analytic face", kernel.ErrUnsupportedSurface, f)
	}
	switch af.surf.kind {
	case kernel.SurfacePlane:
		return kernel.SurfaceInfo{Kind: kernel.SurfacePlane}, nil
	case kernel.SurfaceCylinder:
		return kernel.SurfaceInfo{
			Kind:   kernel.SurfaceCylinder,
			Radius: af.surf.radius,
			Convex: af.surf.convex,
		}, nil
	default:
		return kernel.SurfaceInfo{}, fmt.Errorf("%w: face %q is %s", kernel.ErrUnsupportedSurface, af.Name, af.surf.kind)
	}
}

// Excise implements kernel.Kernel.
func (Kernel) Excise(ctx context.Context, s kernel.Shape, chain []kernel.Face) (kernel.Shape, *kernel.History, error) {
	sol := solidOf(s)
	if sol == nil {
		return nil, nil, fmt.Errorf("%w: %T is not an analytic solid", kernel.ErrExcisionFailed, s)
	}
	faces := make([]*Face, 0, len(chain))
	for _, f := range chain {
		af := faceOf(f)
		if af == nil {
			return nil, nil, fmt.Errorf("%w: %T is not an analytic face", kernel.ErrExcisionFailed, f)
		}
		faces = append(faces, af)
	}
	out, hist, err := Excise(ctx, sol, faces)
	if err != nil {
		return nil, nil, err
	}
	return out, hist, nil
}

func faceOf(f kernel.Face) *Face {
	af, _ := f.(*Face)
	return af
}

func edgeOf(e kernel.Edge) *Edge {
	ae, _ := e.(*Edge)
	return ae
}
