// Package aag implements the attributed adjacency graph of a B-Rep solid.
//
// Nodes are the faces of the solid, identified by 1-based integer ids that
// are stable for the lifetime of one Graph. Arcs join faces that share an
// edge and carry the dihedral classification of the join. Nodes hold a bag
// of typed attributes, at most one per type.
//
// A stack of scopes restricts what read queries see without mutating the
// graph. A Graph is built once from a shape and is discarded when the shape
// changes: ids are never reused or patched, callers rebuild instead.
//
// A Graph is not safe for concurrent mutation. Concurrent reads are fine as
// long as nothing pushes, pops or edits.
package aag
