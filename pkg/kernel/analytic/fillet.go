package analytic

import (
	"fmt"

	"github.com/chazu/defillet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// NearestEdge returns the edge of s closest to p.
func (s *Solid) NearestEdge(p v3.Vec) *Edge {
	var best *Edge
	bestDist := 0.0
	for _, e := range s.edges {
		d := segmentDistance(p, e.V1.P, e.V2.P)
		if best == nil || d < bestDist-eps {
			best, bestDist = e, d
		}
	}
	return best
}

// NearestFace returns the planar or freeform face whose plane passes closest
// to p. Cylindrical faces are ignored.
func (s *Solid) NearestFace(p v3.Vec) *Face {
	var best *Face
	bestDist := 0.0
	for _, f := range s.faces {
		if f.surf.kind == kernel.SurfaceCylinder {
			continue
		}
		d := p.Sub(f.surf.origin).Dot(f.surf.dir)
		if d < 0 {
			d = -d
		}
		if best == nil || d < bestDist-eps {
			best, bestDist = f, d
		}
	}
	return best
}

// Fillet rounds the sharp line edge e of s with a rolling-ball blend of the
// given radius split into segments cylindrical faces along the edge. Both
// faces meeting at e must be planar and each end of e must be capped by
// exactly one planar face. Convex and concave edges are supported.
func Fillet(s *Solid, e *Edge, radius float64, segments int) (*Solid, *kernel.History, error) {
	if radius <= eps {
		return nil, nil, fmt.Errorf("fillet: radius %g must be positive", radius)
	}
	if segments < 1 {
		segments = 1
	}
	if e == nil || e.kind != curveLine {
		return nil, nil, fmt.Errorf("fillet: edge must be a line")
	}
	us := s.uses[e]
	if len(us) != 2 {
		return nil, nil, fmt.Errorf("fillet: edge is not shared by two faces")
	}
	A, B := us[0].face, us[1].face
	sA := us[0].sense
	if A.surf.kind != kernel.SurfacePlane || B.surf.kind != kernel.SurfacePlane {
		return nil, nil, fmt.Errorf("fillet: both faces at the edge must be planar")
	}
	nA, nB := A.surf.dir, B.surf.dir

	axis, ok := unit(e.V2.P.Sub(e.V1.P))
	if !ok {
		return nil, nil, fmt.Errorf("fillet: degenerate edge")
	}
	vex := sign(nA.Cross(nB).Dot(axis.MulScalar(float64(sA))))
	if vex == 0 {
		return nil, nil, fmt.Errorf("fillet: faces are tangent at the edge")
	}
	k := nA.Dot(nB)
	if k <= -1+angularTol {
		return nil, nil, fmt.Errorf("fillet: faces fold back onto each other")
	}
	s0 := float64(vex)
	alpha := -s0 * radius / (1 + k)
	offset := nA.Add(nB).MulScalar(alpha)

	// Each end of the edge must be capped by exactly one planar face whose
	// remaining edges at the end vertex belong to A or B.
	ends := [2]*Vertex{e.V1, e.V2}
	var caps [2]*Face
	for i, v := range ends {
		for _, ie := range s.edgesAt(v) {
			if ie == e {
				continue
			}
			for _, f := range s.facesOf(ie) {
				if f == A || f == B {
					continue
				}
				if caps[i] != nil && caps[i] != f {
					return nil, nil, fmt.Errorf("fillet: end %d touches more than one cap face", i+1)
				}
				caps[i] = f
			}
		}
		if caps[i] == nil || caps[i].surf.kind != kernel.SurfacePlane {
			return nil, nil, fmt.Errorf("fillet: end %d is not capped by a planar face", i+1)
		}
	}

	if caps[0] == caps[1] {
		return nil, nil, fmt.Errorf("fillet: both ends capped by the same face")
	}

	ed := newEdit(s)
	ed.dropEdge(e)

	stations := segments + 1
	as := make([]*Vertex, stations)
	bs := make([]*Vertex, stations)
	centers := make([]v3.Vec, stations)
	for j := 0; j < stations; j++ {
		t := float64(j) / float64(segments)
		p := e.V1.P.Add(e.V2.P.Sub(e.V1.P).MulScalar(t))
		c := p.Add(offset)
		centers[j] = c
		as[j] = &Vertex{P: c.Add(nA.MulScalar(s0 * radius))}
		bs[j] = &Vertex{P: c.Add(nB.MulScalar(s0 * radius))}
	}

	// Re-seat the cap-side edges on the new tangent vertices.
	for i, v := range ends {
		j := 0
		if i == 1 {
			j = segments
		}
		for _, ie := range s.edgesAt(v) {
			if ie == e {
				continue
			}
			onA, onB := s.senseOf(A, ie) != 0, s.senseOf(B, ie) != 0
			switch {
			case onA && !onB:
				ed.repoint(ie, v, as[j])
			case onB && !onA:
				ed.repoint(ie, v, bs[j])
			default:
				return nil, nil, fmt.Errorf("fillet: end %d has an edge not bordering either face", i+1)
			}
		}
	}

	nAf, nBf := ed.modifyFace(A), ed.modifyFace(B)
	capFaces := [2]*Face{ed.modifyFace(caps[0]), ed.modifyFace(caps[1])}

	blends := make([]*Face, segments)
	for j := range blends {
		blends[j] = &Face{
			Name: fmt.Sprintf("fillet-r%g", radius),
			surf: surface{
				kind:   kernel.SurfaceCylinder,
				origin: centers[0],
				dir:    axis,
				radius: radius,
				convex: vex > 0,
			},
		}
		ed.addFace(blends[j])
		ed.hist.AddGenerated(e, blends[j])
	}

	// sigma is the sense of each blend face along its A-side tangent edge;
	// the loop then runs a→b on the far arc and b→a on the near arc.
	sigma := -sA
	for j := 0; j < segments; j++ {
		ta := &Edge{V1: as[j], V2: as[j+1], kind: curveLine}
		tb := &Edge{V1: bs[j], V2: bs[j+1], kind: curveLine}
		ed.addEdge(ta, use{face: nAf, sense: sA}, use{face: blends[j], sense: sigma})
		ed.addEdge(tb, use{face: nBf, sense: -sA}, use{face: blends[j], sense: -sigma})
	}
	for j := 0; j < stations; j++ {
		arc := &Edge{V1: as[j], V2: bs[j], kind: curveArc, center: centers[j], radius: radius}
		var uses []use
		if j > 0 {
			uses = append(uses, use{face: blends[j-1], sense: sigma})
		} else {
			uses = append(uses, use{face: capFaces[0], sense: sigma})
		}
		if j < segments {
			uses = append(uses, use{face: blends[j], sense: -sigma})
		} else {
			uses = append(uses, use{face: capFaces[1], sense: -sigma})
		}
		ed.addEdge(arc, uses...)
	}

	out, hist := ed.build()
	if err := out.Check(); err != nil {
		return nil, nil, fmt.Errorf("fillet: result is invalid: %w", err)
	}
	return out, hist, nil
}
