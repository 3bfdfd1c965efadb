package kernel

// SurfaceKind enumerates the surface types a kernel can report.
type SurfaceKind int

const (
	SurfacePlane SurfaceKind = iota
	SurfaceCylinder
	SurfaceCone
	SurfaceSphere
	SurfaceTorus
	SurfaceFreeform
)

func (k SurfaceKind) String() string {
	switch k {
	case SurfacePlane:
		return "plane"
	case SurfaceCylinder:
		return "cylinder"
	case SurfaceCone:
		return "cone"
	case SurfaceSphere:
		return "sphere"
	case SurfaceTorus:
		return "torus"
	case SurfaceFreeform:
		return "freeform"
	default:
		return "unknown"
	}
}

// SurfaceInfo is the curvature summary of a face.
type SurfaceInfo struct {
	Kind SurfaceKind
	// Radius is the rolling-ball radius a blend of this surface would have:
	// the cylinder or sphere radius, the torus minor radius. Zero for planes.
	Radius float64
	// Convex is true when the surface bulges outward (material on the
	// concave side of the surface).
	Convex bool
}

// IsBlendLike reports whether a surface of this kind can be a rolling-ball
// blend.
func (k SurfaceKind) IsBlendLike() bool {
	switch k {
	case SurfaceCylinder, SurfaceSphere, SurfaceTorus:
		return true
	default:
		return false
	}
}
