package analytic

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// eps is the linear tolerance used by the analytic kernel.
const eps = 1e-9

// angularTol is the tolerance below which two normals count as tangent.
const angularTol = 1e-6

// unit normalises v, returning false for a (near) zero vector.
func unit(v v3.Vec) (v3.Vec, bool) {
	l := v.Length()
	if l < eps {
		return v3.Vec{}, false
	}
	return v.MulScalar(1 / l), true
}

// newell computes the (unnormalised) normal of a planar polygon.
func newell(pts []v3.Vec) v3.Vec {
	var n v3.Vec
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// segmentDistance returns the distance from p to the segment [a, b].
func segmentDistance(p, a, b v3.Vec) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < eps {
		return p.Sub(a).Length()
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return p.Sub(a.Add(ab.MulScalar(t))).Length()
}

// planeIntersection returns a point on, and the direction of, the line where
// planes (n1, o1) and (n2, o2) meet. ok is false for parallel planes.
func planeIntersection(n1, o1, n2, o2 v3.Vec) (point, dir v3.Vec, ok bool) {
	u := n1.Cross(n2)
	u2 := u.Dot(u)
	if u2 < angularTol {
		return v3.Vec{}, v3.Vec{}, false
	}
	d1 := n1.Dot(o1)
	d2 := n2.Dot(o2)
	point = n2.Cross(u).MulScalar(d1).Add(u.Cross(n1).MulScalar(d2)).MulScalar(1 / u2)
	dir, _ = unit(u)
	return point, dir, true
}

// projectOntoLine returns the foot of p on the line through o with unit
// direction d.
func projectOntoLine(p, o, d v3.Vec) v3.Vec {
	return o.Add(d.MulScalar(p.Sub(o).Dot(d)))
}

// sign returns -1, 0 or +1.
func sign(x float64) int {
	switch {
	case x > eps:
		return 1
	case x < -eps:
		return -1
	default:
		return 0
	}
}
