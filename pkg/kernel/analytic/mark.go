package analytic

import (
	"fmt"

	"github.com/chazu/defillet/pkg/kernel"
)

// Freeform returns a copy of s in which f is reported as a freeform surface.
// The face keeps its planar geometry for normal evaluation but the kernel no
// longer characterises its curvature.
func Freeform(s *Solid, f *Face) (*Solid, *kernel.History, error) {
	return retag(s, f, func(nf *Face) { nf.surf.kind = kernel.SurfaceFreeform })
}

// Lock returns a copy of s in which f may no longer be extended or trimmed by
// Excise.
func Lock(s *Solid, f *Face) (*Solid, *kernel.History, error) {
	return retag(s, f, func(nf *Face) { nf.locked = true })
}

func retag(s *Solid, f *Face, apply func(*Face)) (*Solid, *kernel.History, error) {
	if _, ok := s.faceEdges[f]; !ok {
		return nil, nil, fmt.Errorf("face %q does not belong to the solid", f.Name)
	}
	ed := newEdit(s)
	apply(ed.modifyFace(f))
	out, hist := ed.build()
	return out, hist, nil
}
