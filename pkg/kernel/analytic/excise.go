package analytic

import (
	"context"
	"fmt"

	"github.com/chazu/defillet/pkg/kernel"
)

// Excise removes a chain of cylindrical blend faces from s and restores the
// sharp edge between the two planar faces the chain was tangent to. The chain
// must be open: exactly two of its boundary edges meet planar cap faces. The
// support and cap faces are extended or trimmed to the restored edge and must
// not be locked.
func Excise(ctx context.Context, s *Solid, chain []*Face) (*Solid, *kernel.History, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if len(chain) == 0 {
		return nil, nil, fmt.Errorf("%w: empty chain", kernel.ErrExcisionFailed)
	}

	inChain := make(map[*Face]bool, len(chain))
	owned := make(map[*Face]bool, len(s.faces))
	for _, f := range s.faces {
		owned[f] = true
	}
	for _, f := range chain {
		if !owned[f] {
			return nil, nil, fmt.Errorf("%w: face %q does not belong to the solid", kernel.ErrExcisionFailed, f.Name)
		}
		if f.surf.kind != kernel.SurfaceCylinder {
			return nil, nil, fmt.Errorf("%w: face %q is a %s, only cylindrical blends can be excised",
				kernel.ErrExcisionFailed, f.Name, f.surf.kind)
		}
		inChain[f] = true
	}

	// Sort the chain boundary into internal, support (tangent) and cap edges.
	var internal, supportEdges, capEdges []*Edge
	supportOf := make(map[*Edge]*Face)
	capOf := make(map[*Edge]*Face)
	var supports []*Face
	for _, e := range s.edges {
		var chainFace, outside *Face
		for _, u := range s.uses[e] {
			if inChain[u.face] {
				chainFace = u.face
			} else {
				outside = u.face
			}
		}
		switch {
		case chainFace == nil:
			continue
		case outside == nil:
			internal = append(internal, e)
		case tangentAt(e, chainFace, outside):
			supportEdges = append(supportEdges, e)
			supportOf[e] = outside
			if !containsFace(supports, outside) {
				supports = append(supports, outside)
			}
		default:
			capEdges = append(capEdges, e)
			capOf[e] = outside
		}
	}

	if len(supports) != 2 {
		return nil, nil, fmt.Errorf("%w: chain is tangent to %d faces, need 2", kernel.ErrExcisionFailed, len(supports))
	}
	A, B := supports[0], supports[1]
	for _, f := range supports {
		if f.surf.kind != kernel.SurfacePlane {
			return nil, nil, fmt.Errorf("%w: support face %q is a %s, cannot extend", kernel.ErrExcisionFailed, f.Name, f.surf.kind)
		}
		if f.locked {
			return nil, nil, fmt.Errorf("%w: support face %q is locked", kernel.ErrExcisionFailed, f.Name)
		}
	}
	if len(capEdges) != 2 {
		return nil, nil, fmt.Errorf("%w: chain has %d capped ends, need 2", kernel.ErrExcisionFailed, len(capEdges))
	}
	for _, e := range capEdges {
		f := capOf[e]
		if f.surf.kind != kernel.SurfacePlane {
			return nil, nil, fmt.Errorf("%w: cap face %q is a %s, cannot trim", kernel.ErrExcisionFailed, f.Name, f.surf.kind)
		}
		if f.locked {
			return nil, nil, fmt.Errorf("%w: cap face %q is locked", kernel.ErrExcisionFailed, f.Name)
		}
	}

	lineP, lineD, ok := planeIntersection(A.surf.dir, A.surf.origin, B.surf.dir, B.surf.origin)
	if !ok {
		return nil, nil, fmt.Errorf("%w: support faces %q and %q are parallel", kernel.ErrExcisionFailed, A.Name, B.Name)
	}

	// Vertices on each support's tangent edges.
	onSupport := map[*Face]map[*Vertex]bool{A: {}, B: {}}
	for _, e := range supportEdges {
		f := supportOf[e]
		onSupport[f][e.V1] = true
		onSupport[f][e.V2] = true
	}

	ed := newEdit(s)
	for _, f := range chain {
		ed.dropFace(f)
	}
	for _, group := range [][]*Edge{internal, supportEdges, capEdges} {
		for _, e := range group {
			ed.dropEdge(e)
		}
	}

	// One restored corner per capped end, seated on the support intersection.
	corners := make([]*Vertex, len(capEdges))
	for i, ce := range capEdges {
		var aSide, bSide *Vertex
		for _, v := range []*Vertex{ce.V1, ce.V2} {
			switch {
			case onSupport[A][v]:
				aSide = v
			case onSupport[B][v]:
				bSide = v
			}
		}
		if aSide == nil || bSide == nil {
			return nil, nil, fmt.Errorf("%w: capped end %d does not span both supports", kernel.ErrExcisionFailed, i+1)
		}
		corners[i] = &Vertex{P: projectOntoLine(aSide.P, lineP, lineD)}
		ed.hist.AddGenerated(ce, corners[i])

		for _, v := range []*Vertex{aSide, bSide} {
			for _, ie := range s.edgesAt(v) {
				if ed.dropEdges[ie] {
					continue
				}
				ed.repoint(ie, v, corners[i])
			}
		}
		ed.modifyFace(capOf[ce])
	}

	restored := &Edge{V1: corners[0], V2: corners[1], kind: curveLine}
	rd, ok := unit(restored.V2.P.Sub(restored.V1.P))
	if !ok {
		return nil, nil, fmt.Errorf("%w: restored edge is degenerate", kernel.ErrExcisionFailed)
	}
	senseA := 0
	for _, e := range supportEdges {
		if supportOf[e] != A {
			continue
		}
		d, ok := unit(e.V2.P.Sub(e.V1.P))
		if !ok {
			continue
		}
		senseA = s.senseOf(A, e) * sign(rd.Dot(d))
		break
	}
	if senseA == 0 {
		return nil, nil, fmt.Errorf("%w: cannot orient restored edge", kernel.ErrExcisionFailed)
	}

	nA, nB := ed.modifyFace(A), ed.modifyFace(B)
	ed.addEdge(restored, use{face: nA, sense: senseA}, use{face: nB, sense: -senseA})
	for _, f := range chain {
		ed.hist.AddGenerated(f, restored)
	}

	out, hist := ed.build()
	if err := out.Check(); err != nil {
		return nil, nil, fmt.Errorf("%w: result is invalid: %v", kernel.ErrExcisionFailed, err)
	}
	return out, hist, nil
}

// tangentAt reports whether faces f and g meet tangentially along e.
func tangentAt(e *Edge, f, g *Face) bool {
	p, _, ok := e.sample()
	if !ok {
		return false
	}
	nf, ok1 := f.normalAt(p)
	ng, ok2 := g.normalAt(p)
	if !ok1 || !ok2 {
		return false
	}
	return 1-nf.Dot(ng) < angularTol
}

func containsFace(fs []*Face, f *Face) bool {
	for _, x := range fs {
		if x == f {
			return true
		}
	}
	return false
}
