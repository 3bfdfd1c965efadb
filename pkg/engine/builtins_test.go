package engine

import (
	"strings"
	"testing"

	"github.com/chazu/defillet/pkg/kernel"
	"github.com/chazu/defillet/pkg/kernel/analytic"
)

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"simple keyword", `(fillet b :radius 2)`, `(fillet b "__kw_radius" 2)`},
		{"multiple keywords", `(block :min lo :max hi)`, `(block "__kw_min" lo "__kw_max" hi)`},
		{"keyword in string preserved", `"thing with :keyword inside"`, `"thing with :keyword inside"`},
		{"escaped quote in string", `"a \" :b"`, `"a \" :b"`},
		{"assignment operator preserved", `(def x := 10)`, `(def x := 10)`},
		{"kebab-case identifier", `(num-faces :near-by p)`, `(num_faces "__kw_near-by" p)`},
		{"minus operator preserved", `(- 10 5)`, `(- 10 5)`},
		{"comment converted to // style", `;; comment with :keyword`, `// comment with :keyword`},
		{"single semicolon comment", `; simple comment`, `// simple comment`},
		{"backtick string preserved", "`raw :kw`", "`raw :kw`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func evalOK(t *testing.T, src string) *analytic.Solid {
	t.Helper()
	s, evalErrs, err := NewEngine().Evaluate(src)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if s == nil {
		t.Fatal("expected non-nil solid")
	}
	return s
}

func evalFails(t *testing.T, src, want string) {
	t.Helper()
	s, evalErrs, err := NewEngine().Evaluate(src)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if s != nil {
		t.Fatal("expected nil solid")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
	if !strings.Contains(evalErrs[0].Message, want) {
		t.Errorf("message = %q, want containing %q", evalErrs[0].Message, want)
	}
}

func TestFilletedBlock(t *testing.T) {
	s := evalOK(t, `
;; rounded top-front edge
(def b (block :min (vec3 0 0 0) :max (vec3 20 20 10)))
(fillet b :near (vec3 10 0 10) :radius 2)
`)
	if s.NumFaces() != 7 || s.NumEdges() != 15 {
		t.Errorf("expected 7 faces and 15 edges, got %d and %d", s.NumFaces(), s.NumEdges())
	}
	blend := s.Faces()[6]
	if blend.Kind() != kernel.SurfaceCylinder {
		t.Errorf("expected appended cylinder, got %s", blend.Kind())
	}
}

func TestFilletDefaultsToOneSegment(t *testing.T) {
	s := evalOK(t, `(fillet (block :min (vec3 0 0 0) :max (vec3 20 20 10)) :near (vec3 10 0 10) :radius 2.5)`)
	if s.NumFaces() != 7 {
		t.Errorf("expected 7 faces, got %d", s.NumFaces())
	}
}

func TestPrismAndPolyhedron(t *testing.T) {
	prism := evalOK(t, `
(prism :profile (list (vec3 0 0 0) (vec3 10 0 0) (vec3 0 10 0)) :extrude (vec3 0 0 5))
`)
	if prism.NumFaces() != 5 || prism.NumEdges() != 9 {
		t.Errorf("prism: expected 5 faces and 9 edges, got %d and %d", prism.NumFaces(), prism.NumEdges())
	}

	tet := evalOK(t, `
(polyhedron
  :vertices (list (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0) (vec3 0 0 1))
  :faces (list (list 0 2 1) (list 0 1 3) (list 0 3 2) (list 1 2 3)))
`)
	if tet.NumFaces() != 4 || tet.NumEdges() != 6 {
		t.Errorf("tetrahedron: expected 4 faces and 6 edges, got %d and %d", tet.NumFaces(), tet.NumEdges())
	}
}

func TestFreeformAndLock(t *testing.T) {
	s := evalOK(t, `
(def b (block :min (vec3 0 0 0) :max (vec3 20 20 10)))
(lock (freeform b :near (vec3 10 10 10.5)) :near (vec3 10 -0.5 5))
`)
	faces := s.Faces()
	if faces[1].Kind() != kernel.SurfaceFreeform {
		t.Errorf("expected top to be freeform, got %s", faces[1].Kind())
	}
	if !faces[2].Locked() {
		t.Error("expected front to be locked")
	}
}

func TestNumFaces(t *testing.T) {
	s, evalErrs, err := NewEngine().Evaluate(`(num-faces (block :min (vec3 0 0 0) :max (vec3 1 1 1)))`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if s != nil {
		t.Fatal("an integer result is not a shape")
	}
	if len(evalErrs) == 0 || !strings.Contains(evalErrs[0].Message, "6") {
		t.Errorf("expected the shape error to echo the value 6, got %v", evalErrs)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"vec3 arity", `(vec3 1 2)`, "vec3"},
		{"vec3 type", `(vec3 1 2 "x")`, "expected number"},
		{"block missing max", `(block :min (vec3 0 0 0))`, "missing :max"},
		{"block flat", `(block :min (vec3 0 0 0) :max (vec3 1 1 0))`, "non-positive extent"},
		{"fillet no shape", `(fillet :near (vec3 0 0 0) :radius 1)`, "expected one shape"},
		{"fillet bad radius", `(fillet (block :min (vec3 0 0 0) :max (vec3 1 1 1)) :near (vec3 0.5 0 1) :radius 0)`, "radius"},
		{"fillet segments type", `(fillet (block :min (vec3 0 0 0) :max (vec3 1 1 1)) :near (vec3 0.5 0 1) :radius 0.2 :segments 1.5)`, "segments"},
		{"polyhedron open", `(polyhedron :vertices (list (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0)) :faces (list (list 0 1 2)))`, "polyhedron"},
		{"freeform not shape", `(freeform (vec3 0 0 0) :near (vec3 0 0 0))`, "expected shape"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evalFails(t, tt.src, tt.want)
		})
	}
}
