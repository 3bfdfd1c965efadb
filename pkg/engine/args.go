package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// kwArgs is an argument list split into keyword and positional parts.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// isKW reports whether s is a keyword produced by preprocessSource and
// returns its bare name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// parseArgs separates keyword arguments from positional ones. A trailing
// keyword with no value maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	pa := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			pa.positional = append(pa.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			pa.kw[name] = args[i+1]
			i++
		} else {
			pa.kw[name] = zygo.SexpNull
		}
	}
	return pa
}

// require returns keyword k or an error naming the builtin.
func (pa kwArgs) require(fn, k string) (zygo.Sexp, error) {
	v, ok := pa.kw[k]
	if !ok {
		return nil, fmt.Errorf("%s: missing :%s", fn, k)
	}
	return v, nil
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toSolid(s zygo.Sexp) (*sexpSolid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice flattens a list or array into a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}
