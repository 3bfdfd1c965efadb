package kernel

import "testing"

// stub is a minimal sub-shape compared by pointer identity.
type stub struct {
	name string
	kind TopoKind
}

func (s *stub) TopoKind() TopoKind { return s.kind }

func face(name string) *stub { return &stub{name: name, kind: TopoFace} }

func names(ss []SubShape) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.(*stub).name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestHistoryResolve(t *testing.T) {
	a, b, c, d, e := face("a"), face("b"), face("c"), face("d"), face("e")
	tests := []struct {
		name  string
		build func() *History
		from  SubShape
		want  []string
	}{
		{"untouched resolves to itself", NewHistory, a, []string{"a"}},
		{"modified", func() *History {
			h := NewHistory()
			h.AddModified(a, b)
			return h
		}, a, []string{"b"}},
		{"deleted without image", func() *History {
			h := NewHistory()
			h.SetDeleted(a)
			return h
		}, a, nil},
		{"deleted with generated image", func() *History {
			h := NewHistory()
			h.SetDeleted(a)
			h.AddGenerated(a, b)
			return h
		}, a, []string{"b"}},
		{"split", func() *History {
			h := NewHistory()
			h.AddModified(a, b)
			h.AddModified(a, c)
			return h
		}, a, []string{"b", "c"}},
		{"chain through deleted intermediate", func() *History {
			h := NewHistory()
			h.AddModified(a, b)
			h.AddGenerated(b, c)
			h.SetDeleted(b)
			return h
		}, a, []string{"c"}},
		{"image later deleted", func() *History {
			h := NewHistory()
			h.AddModified(a, b)
			h.AddModified(d, e)
			h.SetDeleted(b)
			return h
		}, a, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(tt.build().Resolve(tt.from))
			if !equal(got, tt.want) {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHistoryConcatenateComposes(t *testing.T) {
	a, b, c := face("a"), face("b"), face("c")

	h1 := NewHistory()
	h1.AddModified(a, b)
	h2 := NewHistory()
	h2.AddModified(b, c)

	merged := h1.Clone()
	merged.Concatenate(h2)

	if got := names(merged.Resolve(a)); !equal(got, []string{"c"}) {
		t.Errorf("Resolve(a) = %v, want [c]", got)
	}
	if merged.Len() != 2 {
		t.Errorf("Len() = %d, want 2", merged.Len())
	}
	// The inputs are left alone.
	if got := names(h1.Resolve(a)); !equal(got, []string{"b"}) {
		t.Errorf("h1.Resolve(a) = %v, want [b]", got)
	}
}

func TestHistoryIgnoresIdentityAndNil(t *testing.T) {
	a := face("a")
	h := NewHistory()
	h.AddModified(a, a)
	h.AddGenerated(a, nil)
	h.AddModified(nil, a)
	h.SetDeleted(nil)
	if h.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", h.Len())
	}
	if h.HasImages(a) {
		t.Error("HasImages(a) = true, want false")
	}
}

func TestHistorySetDeletedIdempotent(t *testing.T) {
	a := face("a")
	h := NewHistory()
	h.SetDeleted(a)
	h.SetDeleted(a)
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}
	recs := h.Records()
	if recs[0].Kind != Deleted || recs[0].To != nil {
		t.Errorf("record = %+v, want Deleted with nil To", recs[0])
	}
}

func TestHistoryNilSafe(t *testing.T) {
	var h *History
	if h.Len() != 0 || h.Records() != nil {
		t.Fatal("nil history should be empty")
	}
	NewHistory().Concatenate(nil)
}

func TestKindStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{TopoFace.String(), "face"},
		{TopoEdge.String(), "edge"},
		{SurfaceCylinder.String(), "cylinder"},
		{SurfaceFreeform.String(), "freeform"},
		{Generated.String(), "generated"},
		{Transition(9).String(), "Transition(9)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestIsBlendLike(t *testing.T) {
	for k, want := range map[SurfaceKind]bool{
		SurfacePlane:    false,
		SurfaceCylinder: true,
		SurfaceCone:     false,
		SurfaceSphere:   true,
		SurfaceTorus:    true,
		SurfaceFreeform: false,
	} {
		if got := k.IsBlendLike(); got != want {
			t.Errorf("%s.IsBlendLike() = %v, want %v", k, got, want)
		}
	}
}
