package aag

import "fmt"

// AttrType identifies a node attribute variant. A node holds at most one
// attribute per type.
type AttrType int

const (
	AttrBlendCandidate AttrType = iota + 1
	AttrQuarantined
)

func (t AttrType) String() string {
	switch t {
	case AttrBlendCandidate:
		return "blend-candidate"
	case AttrQuarantined:
		return "quarantined"
	default:
		return fmt.Sprintf("AttrType(%d)", int(t))
	}
}

// NodeAttr is a typed node attribute payload. The variants are plain data
// defined in this package.
type NodeAttr interface {
	AttrType() AttrType
	nodeAttr() // marker method restricting implementations to this package
}

// BlendKind distinguishes the surface shape of a recognised blend.
type BlendKind int

const (
	BlendCylindrical BlendKind = iota
	BlendSpherical
	BlendToroidal
)

func (k BlendKind) String() string {
	switch k {
	case BlendCylindrical:
		return "cylindrical"
	case BlendSpherical:
		return "spherical"
	case BlendToroidal:
		return "toroidal"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind name in JSON dumps.
func (k BlendKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText parses a name written by MarshalText.
func (k *BlendKind) UnmarshalText(b []byte) error {
	for _, v := range []BlendKind{BlendCylindrical, BlendSpherical, BlendToroidal} {
		if v.String() == string(b) {
			*k = v
			return nil
		}
	}
	return fmt.Errorf("unknown blend kind %q", b)
}

// BlendCandidate marks a face recognised as a rolling-ball blend.
type BlendCandidate struct {
	Kind   BlendKind `json:"kind"`
	Radius float64   `json:"radius"`
	Convex bool      `json:"convex"`
	// SmoothEdges are the ids of edges joining the blend tangentially to its
	// supports or to neighbouring blends.
	SmoothEdges []int `json:"smooth_edges,omitempty"`
	// CrossEdges are the ids of the sharp edges at the blend's ends.
	CrossEdges []int `json:"cross_edges,omitempty"`
	// Chain numbers the connected blend chain the face belongs to, starting
	// at 1 in the order chains were discovered.
	Chain int `json:"chain"`
}

func (BlendCandidate) AttrType() AttrType { return AttrBlendCandidate }
func (BlendCandidate) nodeAttr()          {}

// Quarantined marks a face whose chain the kernel failed to excise.
type Quarantined struct {
	Reason string `json:"reason"`
}

func (Quarantined) AttrType() AttrType { return AttrQuarantined }
func (Quarantined) nodeAttr()          {}

// Attr returns the attribute of type T on face id, if present. Unknown ids
// report false.
func Attr[T NodeAttr](g *Graph, id int) (T, bool) {
	var zero T
	bag, ok := g.attrs[id]
	if !ok {
		return zero, false
	}
	a, ok := bag[zero.AttrType()].(T)
	return a, ok
}
