package kernel

import "fmt"

// Transition classifies one history record.
type Transition int

const (
	Generated Transition = iota // new sub-shape produced from an old one
	Modified                    // old sub-shape replaced by a new version
	Deleted                     // old sub-shape removed without an image
)

func (t Transition) String() string {
	switch t {
	case Generated:
		return "generated"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("Transition(%d)", int(t))
	}
}

// Record is a single entry of a History log. To is nil for Deleted records.
type Record struct {
	Kind Transition
	From SubShape
	To   SubShape
}

// History is an append-only log of sub-shape transitions produced by one or
// more topology edits. Records are kept in insertion order so an edit sequence
// can be replayed; an index over the log answers image queries. Histories of
// successive edits are merged with Concatenate and resolved transitively.
//
// A History is not safe for concurrent mutation.
type History struct {
	records  []Record
	modified map[SubShape][]SubShape
	gen      map[SubShape][]SubShape
	deleted  map[SubShape]bool
}

// NewHistory returns an empty History.
func NewHistory() *History {
	return &History{
		modified: make(map[SubShape][]SubShape),
		gen:      make(map[SubShape][]SubShape),
		deleted:  make(map[SubShape]bool),
	}
}

// AddModified records that from was replaced by to. Identity modifications
// are ignored.
func (h *History) AddModified(from, to SubShape) {
	if from == nil || to == nil || from == to {
		return
	}
	h.records = append(h.records, Record{Kind: Modified, From: from, To: to})
	h.modified[from] = append(h.modified[from], to)
}

// AddGenerated records that to was generated from from.
func (h *History) AddGenerated(from, to SubShape) {
	if from == nil || to == nil || from == to {
		return
	}
	h.records = append(h.records, Record{Kind: Generated, From: from, To: to})
	h.gen[from] = append(h.gen[from], to)
}

// SetDeleted records that s was removed. Repeated calls are no-ops.
func (h *History) SetDeleted(s SubShape) {
	if s == nil || h.deleted[s] {
		return
	}
	h.records = append(h.records, Record{Kind: Deleted, From: s})
	h.deleted[s] = true
}

// Len returns the number of records in the log.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.records)
}

// Records returns a copy of the log in insertion order.
func (h *History) Records() []Record {
	if h == nil {
		return nil
	}
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Modified returns the direct modified images of s.
func (h *History) Modified(s SubShape) []SubShape {
	return append([]SubShape(nil), h.modified[s]...)
}

// Generated returns the sub-shapes directly generated from s.
func (h *History) Generated(s SubShape) []SubShape {
	return append([]SubShape(nil), h.gen[s]...)
}

// IsDeleted reports whether s was deleted at some step.
func (h *History) IsDeleted(s SubShape) bool {
	return h.deleted[s]
}

// HasImages reports whether s was modified or generated anything.
func (h *History) HasImages(s SubShape) bool {
	return len(h.modified[s]) > 0 || len(h.gen[s]) > 0
}

// Resolve follows modified and generated transitions from s through every
// concatenated step and returns the final images, in discovery order. A
// sub-shape with no recorded transitions resolves to itself; one that was
// deleted without images resolves to nothing.
func (h *History) Resolve(s SubShape) []SubShape {
	var out []SubShape
	seen := map[SubShape]bool{s: true}
	stack := []SubShape{s}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		next := append(append([]SubShape(nil), h.modified[cur]...), h.gen[cur]...)
		if len(next) == 0 {
			if !h.deleted[cur] {
				out = append(out, cur)
			}
			continue
		}
		// Push in reverse so images come out in record order.
		for i := len(next) - 1; i >= 0; i-- {
			if !seen[next[i]] {
				seen[next[i]] = true
				stack = append(stack, next[i])
			}
		}
	}
	return out
}

// Concatenate appends the records of next to h. Because sub-shapes are
// compared by identity, an image produced by h that next transforms further is
// linked automatically: A→B followed by B→C resolves A to C.
func (h *History) Concatenate(next *History) {
	if next == nil {
		return
	}
	for _, r := range next.records {
		switch r.Kind {
		case Modified:
			h.AddModified(r.From, r.To)
		case Generated:
			h.AddGenerated(r.From, r.To)
		case Deleted:
			h.SetDeleted(r.From)
		}
	}
}

// Clone returns an independent copy of h.
func (h *History) Clone() *History {
	c := NewHistory()
	c.Concatenate(h)
	return c
}
