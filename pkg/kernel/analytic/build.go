package analytic

import (
	"fmt"

	"github.com/chazu/defillet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Polyhedron builds a planar solid from vertex positions and face loops. Each
// loop lists vertex indices counter-clockwise when viewed from outside the
// solid. The result must be a closed, consistently oriented two-manifold.
func Polyhedron(vertices []v3.Vec, loops [][]int) (*Solid, error) {
	verts := make([]*Vertex, len(vertices))
	for i, p := range vertices {
		verts[i] = &Vertex{P: p}
	}

	type key struct{ lo, hi int }
	index := make(map[key]*Edge)
	var edges []*Edge
	uses := make(map[*Edge][]use)
	faces := make([]*Face, 0, len(loops))

	for fi, loop := range loops {
		if len(loop) < 3 {
			return nil, fmt.Errorf("polyhedron: face %d has %d vertices, need at least 3", fi+1, len(loop))
		}
		pts := make([]v3.Vec, len(loop))
		for j, vi := range loop {
			if vi < 0 || vi >= len(verts) {
				return nil, fmt.Errorf("polyhedron: face %d references vertex %d out of range", fi+1, vi)
			}
			pts[j] = vertices[vi]
		}
		n, ok := unit(newell(pts))
		if !ok {
			return nil, fmt.Errorf("polyhedron: face %d is degenerate", fi+1)
		}
		f := &Face{surf: surface{kind: kernel.SurfacePlane, origin: pts[0], dir: n}}
		faces = append(faces, f)

		for j := range loop {
			a, b := loop[j], loop[(j+1)%len(loop)]
			if a == b {
				return nil, fmt.Errorf("polyhedron: face %d repeats vertex %d", fi+1, a)
			}
			k := key{lo: a, hi: b}
			sense := 1
			if a > b {
				k = key{lo: b, hi: a}
				sense = -1
			}
			e, ok := index[k]
			if !ok {
				e = &Edge{V1: verts[k.lo], V2: verts[k.hi], kind: curveLine}
				index[k] = e
				edges = append(edges, e)
			}
			uses[e] = append(uses[e], use{face: f, sense: sense})
		}
	}

	s := newSolid(faces, edges, uses)
	if err := s.Check(); err != nil {
		return nil, fmt.Errorf("polyhedron: %w", err)
	}
	return s, nil
}

// Block builds an axis-aligned box between min and max. Faces are named and
// ordered bottom, top, front (min Y), back (max Y), left (min X), right (max X).
func Block(min, max v3.Vec) (*Solid, error) {
	if max.X-min.X <= eps || max.Y-min.Y <= eps || max.Z-min.Z <= eps {
		return nil, fmt.Errorf("block: non-positive extent between %v and %v", min, max)
	}
	x0, y0, z0 := min.X, min.Y, min.Z
	x1, y1, z1 := max.X, max.Y, max.Z
	verts := []v3.Vec{
		{X: x0, Y: y0, Z: z0}, {X: x1, Y: y0, Z: z0}, {X: x1, Y: y1, Z: z0}, {X: x0, Y: y1, Z: z0},
		{X: x0, Y: y0, Z: z1}, {X: x1, Y: y0, Z: z1}, {X: x1, Y: y1, Z: z1}, {X: x0, Y: y1, Z: z1},
	}
	loops := [][]int{
		{0, 3, 2, 1}, // bottom
		{4, 5, 6, 7}, // top
		{0, 1, 5, 4}, // front
		{3, 7, 6, 2}, // back
		{0, 4, 7, 3}, // left
		{1, 2, 6, 5}, // right
	}
	s, err := Polyhedron(verts, loops)
	if err != nil {
		return nil, err
	}
	for i, name := range []string{"bottom", "top", "front", "back", "left", "right"} {
		s.faces[i].Name = name
	}
	return s, nil
}

// Prism extrudes a planar profile polygon along d. The profile winding is
// normalised so the result is outward oriented regardless of input order.
func Prism(profile []v3.Vec, d v3.Vec) (*Solid, error) {
	n := len(profile)
	if n < 3 {
		return nil, fmt.Errorf("prism: profile has %d points, need at least 3", n)
	}
	pts := append([]v3.Vec(nil), profile...)
	normal := newell(pts)
	switch {
	case normal.Dot(d) > eps:
		// The base loop must face away from the extrusion.
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	case normal.Dot(d) > -eps:
		return nil, fmt.Errorf("prism: extrusion direction lies in the profile plane")
	}

	verts := make([]v3.Vec, 0, 2*n)
	verts = append(verts, pts...)
	for _, p := range pts {
		verts = append(verts, p.Add(d))
	}

	base := make([]int, n)
	top := make([]int, n)
	for i := 0; i < n; i++ {
		base[i] = i
		top[i] = 2*n - 1 - i
	}
	loops := [][]int{base, top}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		loops = append(loops, []int{i, n + i, n + j, j})
	}
	return Polyhedron(verts, loops)
}
