package engine

import (
	"fmt"

	"github.com/chazu/defillet/pkg/kernel"
	"github.com/chazu/defillet/pkg/kernel/analytic"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// sexpVec3 carries a point or direction between builtins.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSolid carries a solid between builtins and out of the script.
type sexpSolid struct {
	solid *analytic.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(solid :faces %d :edges %d)", s.solid.NumFaces(), s.solid.NumEdges())
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// registerBuiltins installs the modelling builtins into env. Source must be
// run through preprocessSource first so keyword arguments are recognisable.
func registerBuiltins(env *zygo.Zlisp) {
	// (vec3 x y z)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3: expected 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: argument %d: %w", i+1, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// (block :min (vec3 0 0 0) :max (vec3 20 20 10))
	env.AddFunction("block", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		lo, err := vecArg(pa, "block", "min")
		if err != nil {
			return zygo.SexpNull, err
		}
		hi, err := vecArg(pa, "block", "max")
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := analytic.Block(lo, hi)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s}, nil
	})

	// (prism :profile (list (vec3 ...) ...) :extrude (vec3 0 0 10))
	env.AddFunction("prism", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		raw, err := pa.require("prism", "profile")
		if err != nil {
			return zygo.SexpNull, err
		}
		profile, err := vecList(raw)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("prism: profile: %w", err)
		}
		d, err := vecArg(pa, "prism", "extrude")
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := analytic.Prism(profile, d)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s}, nil
	})

	// (polyhedron :vertices (list (vec3 ...) ...) :faces (list (list 0 1 2) ...))
	env.AddFunction("polyhedron", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		raw, err := pa.require("polyhedron", "vertices")
		if err != nil {
			return zygo.SexpNull, err
		}
		verts, err := vecList(raw)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polyhedron: vertices: %w", err)
		}
		raw, err = pa.require("polyhedron", "faces")
		if err != nil {
			return zygo.SexpNull, err
		}
		items, err := sexpListToSlice(raw)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polyhedron: faces: %w", err)
		}
		loops := make([][]int, len(items))
		for i, item := range items {
			idx, err := sexpListToSlice(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polyhedron: face %d: %w", i+1, err)
			}
			for _, x := range idx {
				n, err := toInt(x)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("polyhedron: face %d: %w", i+1, err)
				}
				loops[i] = append(loops[i], n)
			}
		}
		s, err := analytic.Polyhedron(verts, loops)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s}, nil
	})

	// (fillet shape :near (vec3 ...) :radius 2 :segments 1)
	env.AddFunction("fillet", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		src, err := shapeArg(pa, "fillet")
		if err != nil {
			return zygo.SexpNull, err
		}
		near, err := vecArg(pa, "fillet", "near")
		if err != nil {
			return zygo.SexpNull, err
		}
		raw, err := pa.require("fillet", "radius")
		if err != nil {
			return zygo.SexpNull, err
		}
		r, err := toFloat64(raw)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fillet: radius: %w", err)
		}
		segments := 1
		if v, ok := pa.kw["segments"]; ok {
			if segments, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("fillet: segments: %w", err)
			}
		}
		s, _, err := analytic.Fillet(src.solid, src.solid.NearestEdge(near), r, segments)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s}, nil
	})

	// (freeform shape :near (vec3 ...))
	env.AddFunction("freeform", faceOp("freeform", analytic.Freeform))

	// (lock shape :near (vec3 ...))
	env.AddFunction("lock", faceOp("lock", analytic.Lock))

	// (num-faces shape)
	env.AddFunction("num_faces", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("num-faces: expected 1 argument, got %d", len(args))
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("num-faces: %w", err)
		}
		return &zygo.SexpInt{Val: int64(s.solid.NumFaces())}, nil
	})
}

type faceEdit func(*analytic.Solid, *analytic.Face) (*analytic.Solid, *kernel.History, error)

// faceOp adapts a single-face edit to a builtin taking a shape and :near.
func faceOp(fn string, op faceEdit) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		src, err := shapeArg(pa, fn)
		if err != nil {
			return zygo.SexpNull, err
		}
		near, err := vecArg(pa, fn, "near")
		if err != nil {
			return zygo.SexpNull, err
		}
		f := src.solid.NearestFace(near)
		if f == nil {
			return zygo.SexpNull, fmt.Errorf("%s: no planar face near %v", fn, near)
		}
		s, _, err := op(src.solid, f)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
		}
		return &sexpSolid{solid: s}, nil
	}
}

func vecArg(pa kwArgs, fn, k string) (v3.Vec, error) {
	raw, err := pa.require(fn, k)
	if err != nil {
		return v3.Vec{}, err
	}
	v, err := toVec3(raw)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("%s: %s: %w", fn, k, err)
	}
	return v, nil
}

func shapeArg(pa kwArgs, fn string) (*sexpSolid, error) {
	if len(pa.positional) != 1 {
		return nil, fmt.Errorf("%s: expected one shape argument, got %d", fn, len(pa.positional))
	}
	s, err := toSolid(pa.positional[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return s, nil
}

func vecList(s zygo.Sexp) ([]v3.Vec, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]v3.Vec, len(items))
	for i, item := range items {
		if out[i], err = toVec3(item); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
	}
	return out, nil
}
