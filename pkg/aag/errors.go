package aag

import "errors"

var (
	// ErrUnknownFace is returned by id-indexed accessors for an id that is
	// not registered in the full (unscoped) graph.
	ErrUnknownFace = errors.New("unknown face")

	// ErrUnknownEdge is returned when an edge is not part of the graph's shape.
	ErrUnknownEdge = errors.New("unknown edge")

	// ErrScopeUnderflow is returned when popping an empty scope stack.
	ErrScopeUnderflow = errors.New("scope stack underflow")

	// ErrNilShape is returned by Build when no shape or kernel is given.
	ErrNilShape = errors.New("nil shape or kernel")
)
