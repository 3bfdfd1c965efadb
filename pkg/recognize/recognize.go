// Package recognize finds faces of a solid that look like rolling-ball
// blends of a given radius.
package recognize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/chazu/defillet/pkg/aag"
	"github.com/chazu/defillet/pkg/dihedral"
	"github.com/chazu/defillet/pkg/kernel"
	"github.com/plan-systems/klog"
	"golang.org/x/sync/errgroup"
)

// ErrRecognitionFailed is returned when a surface query needed for
// recognition cannot be evaluated. It fails the whole call.
var ErrRecognitionFailed = errors.New("blend recognition failed")

// DefaultRadiusTolerance is the absolute radius mismatch accepted when
// matching a face against the target radius.
const DefaultRadiusTolerance = 1e-3

// Recognizer decides blend candidacy for the visible faces of a graph.
type Recognizer struct {
	// RadiusTolerance is the accepted absolute difference between a face's
	// blend radius and the target. Zero means DefaultRadiusTolerance.
	RadiusTolerance float64
	// Workers bounds concurrent surface queries. Zero means GOMAXPROCS.
	Workers int
}

type faceInfo struct {
	id   int
	surf kernel.SurfaceInfo
}

// Recognize returns the ids of the visible faces of g that qualify as blends
// of approximately radius. A face qualifies when its surface is blend-like,
// its radius matches and it joins at least one visible neighbour smoothly.
// Qualifying faces are grouped into chains and tagged with an
// aag.BlendCandidate attribute.
func (r Recognizer) Recognize(ctx context.Context, g *aag.Graph, radius float64) (aag.IDSet, error) {
	tol := r.RadiusTolerance
	if tol <= 0 {
		tol = DefaultRadiusTolerance
	}
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ids := g.Nodes()
	infos := make([]faceInfo, len(ids))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, id := range ids {
		i, id := i, id
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := g.Face(id)
			if err != nil {
				return err
			}
			info, err := g.Kernel().Surface(f)
			if err != nil {
				return fmt.Errorf("%w: face %d: %w", ErrRecognitionFailed, id, err)
			}
			infos[i] = faceInfo{id: id, surf: info}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	candidates := make(aag.IDSet)
	attrs := make(map[int]aag.BlendCandidate)
	for _, fi := range infos {
		kind, ok := blendKind(fi.surf.Kind)
		if !ok || math.Abs(fi.surf.Radius-radius) > tol {
			continue
		}
		smooth, cross, err := splitEdges(g, fi.id)
		if err != nil {
			return nil, err
		}
		if len(smooth) == 0 {
			continue
		}
		candidates.Add(fi.id)
		attrs[fi.id] = aag.BlendCandidate{
			Kind:        kind,
			Radius:      fi.surf.Radius,
			Convex:      fi.surf.Convex,
			SmoothEdges: smooth,
			CrossEdges:  cross,
		}
	}

	// Chains follow every arc between candidates, tangent or not, regardless
	// of the graph's smooth adjacency setting.
	g.PushSubgraph(candidates)
	chains := g.ComponentsVia(nil)
	if err := g.PopSubgraph(); err != nil {
		return nil, err
	}

	// Tags from an earlier pass over these faces are replaced.
	for _, id := range ids {
		if _, err := g.RemoveNodeAttribute(id, aag.AttrBlendCandidate); err != nil {
			return nil, err
		}
	}
	for n, chain := range chains {
		for _, id := range chain.Sorted() {
			bc := attrs[id]
			bc.Chain = n + 1
			if _, err := g.SetNodeAttribute(id, bc); err != nil {
				return nil, err
			}
		}
	}

	klog.V(1).Infof("recognize: %d candidate faces in %d chains at radius %g", len(candidates), len(chains), radius)
	return candidates, nil
}

func blendKind(k kernel.SurfaceKind) (aag.BlendKind, bool) {
	switch k {
	case kernel.SurfaceCylinder:
		return aag.BlendCylindrical, true
	case kernel.SurfaceSphere:
		return aag.BlendSpherical, true
	case kernel.SurfaceTorus:
		return aag.BlendToroidal, true
	default:
		return 0, false
	}
}

// splitEdges sorts the edges of face id's visible arcs into smooth and sharp.
func splitEdges(g *aag.Graph, id int) (smooth, cross []int, err error) {
	nbs, err := g.Neighbors(id)
	if err != nil {
		return nil, nil, err
	}
	for _, nb := range nbs.Sorted() {
		info, _ := g.Arc(id, nb)
		if info.Angle == dihedral.Smooth {
			smooth = append(smooth, info.Edges...)
		} else {
			cross = append(cross, info.Edges...)
		}
	}
	return smooth, cross, nil
}

// FindSmoothEdges returns the ids of the edges of every visible Smooth arc.
func FindSmoothEdges(g *aag.Graph) aag.IDSet {
	out := make(aag.IDSet)
	for _, a := range g.Arcs() {
		info, _ := g.Arc(a.F1, a.F2)
		if info.Angle != dihedral.Smooth {
			continue
		}
		for _, e := range info.Edges {
			out.Add(e)
		}
	}
	return out
}
