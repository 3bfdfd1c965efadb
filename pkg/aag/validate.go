package aag

import (
	"fmt"
	"sort"

	"github.com/chazu/defillet/pkg/dihedral"
)

// ValidationSeverity indicates whether a finding breaks a graph invariant or
// is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // broken invariant
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	FaceID   int                // which face has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.FaceID == 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] face %d: %s", e.Severity, e.FaceID, e.Message)
}

// Validate checks the structural invariants of the full (unscoped) graph and
// returns the findings. An empty slice means the graph is consistent. Validate
// never mutates the graph.
func (g *Graph) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, g.validateIndex()...)
	errs = append(errs, g.validateArcs()...)
	errs = append(errs, g.validateSymmetry()...)
	errs = append(errs, g.validateScopes()...)
	errs = append(errs, g.validateArcClasses()...)
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].FaceID < errs[j].FaceID })
	return errs
}

// validateIndex checks that face ids and the face table agree.
func (g *Graph) validateIndex() []ValidationError {
	var errs []ValidationError
	for id := range g.nodes {
		if id < 1 || id > len(g.faces) || g.faces[id-1] == nil {
			errs = append(errs, ValidationError{
				FaceID:   id,
				Message:  "registered id has no face",
				Severity: SeverityError,
			})
			continue
		}
		if back, ok := g.faceIDs[g.faces[id-1]]; !ok || back != id {
			errs = append(errs, ValidationError{
				FaceID:   id,
				Message:  fmt.Sprintf("face index maps back to id %d", back),
				Severity: SeverityError,
			})
		}
		if _, ok := g.adj[id]; !ok {
			errs = append(errs, ValidationError{
				FaceID:   id,
				Message:  "no adjacency entry",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateArcs checks that every arc joins two registered faces, is
// normalised and is mirrored in the adjacency map.
func (g *Graph) validateArcs() []ValidationError {
	var errs []ValidationError
	for a, info := range g.arcs {
		if a.F1 >= a.F2 {
			errs = append(errs, ValidationError{
				FaceID:   a.F1,
				Message:  fmt.Sprintf("arc (%d, %d) is not normalised", a.F1, a.F2),
				Severity: SeverityError,
			})
		}
		for _, id := range []int{a.F1, a.F2} {
			if !g.nodes.Has(id) {
				errs = append(errs, ValidationError{
					FaceID:   id,
					Message:  fmt.Sprintf("arc (%d, %d) references an unregistered face", a.F1, a.F2),
					Severity: SeverityError,
				})
			}
		}
		if !g.adj[a.F1].Has(a.F2) || !g.adj[a.F2].Has(a.F1) {
			errs = append(errs, ValidationError{
				FaceID:   a.F1,
				Message:  fmt.Sprintf("arc (%d, %d) missing from adjacency", a.F1, a.F2),
				Severity: SeverityError,
			})
		}
		if len(info.Edges) == 0 {
			errs = append(errs, ValidationError{
				FaceID:   a.F1,
				Message:  fmt.Sprintf("arc (%d, %d) has no shared edges", a.F1, a.F2),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateSymmetry checks b ∈ adj(a) ⇔ a ∈ adj(b) and that every adjacency
// has an arc.
func (g *Graph) validateSymmetry() []ValidationError {
	var errs []ValidationError
	for a, nbs := range g.adj {
		for b := range nbs {
			if !g.adj[b].Has(a) {
				errs = append(errs, ValidationError{
					FaceID:   a,
					Message:  fmt.Sprintf("neighbour %d does not list this face back", b),
					Severity: SeverityError,
				})
			}
			if _, ok := g.arcs[NewArc(a, b)]; !ok {
				errs = append(errs, ValidationError{
					FaceID:   a,
					Message:  fmt.Sprintf("adjacent to %d without an arc", b),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateScopes checks that every scope only lists registered faces.
func (g *Graph) validateScopes() []ValidationError {
	var errs []ValidationError
	for depth, s := range g.scopes {
		for id := range s {
			if !g.nodes.Has(id) {
				errs = append(errs, ValidationError{
					FaceID:   id,
					Message:  fmt.Sprintf("scope %d lists an unregistered face", depth+1),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateArcClasses reports arcs that could not be classified. They are
// legal but usually point at degenerate geometry.
func (g *Graph) validateArcClasses() []ValidationError {
	var errs []ValidationError
	for a, info := range g.arcs {
		if info.Angle == dihedral.Undefined {
			errs = append(errs, ValidationError{
				FaceID:   a.F1,
				Message:  fmt.Sprintf("arc (%d, %d) has undefined dihedral angle", a.F1, a.F2),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
