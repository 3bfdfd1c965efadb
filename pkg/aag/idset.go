package aag

import "sort"

// IDSet is an unordered set of face (or edge) ids.
type IDSet map[int]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id.
func (s IDSet) Add(id int) { s[id] = struct{}{} }

// Remove deletes id.
func (s IDSet) Remove(id int) { delete(s, id) }

// Has reports whether id is present.
func (s IDSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids.
func (s IDSet) Len() int { return len(s) }

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Union adds every id of o to s.
func (s IDSet) Union(o IDSet) {
	for id := range o {
		s[id] = struct{}{}
	}
}

// Subtract removes every id of o from s.
func (s IDSet) Subtract(o IDSet) {
	for id := range o {
		delete(s, id)
	}
}
