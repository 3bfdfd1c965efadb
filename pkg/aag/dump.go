package aag

import (
	"encoding/json"
	"io"
)

type nodeDump struct {
	ID       int                 `json:"id"`
	Surface  string              `json:"surface"`
	Radius   float64             `json:"radius,omitempty"`
	Selected bool                `json:"selected,omitempty"`
	Attrs    map[string]NodeAttr `json:"attributes,omitempty"`
}

type arcDump struct {
	Arc
	ArcInfo
}

type graphDump struct {
	Nodes []nodeDump `json:"nodes"`
	Arcs  []arcDump  `json:"arcs"`
}

// DumpJSON writes the visible part of the graph as indented JSON: one entry
// per face with its surface kind and attributes, one entry per arc with its
// classification and shared edge ids.
func (g *Graph) DumpJSON(w io.Writer) error {
	var d graphDump
	for _, id := range g.Nodes() {
		n := nodeDump{ID: id, Selected: g.selected.Has(id)}
		if info, err := g.k.Surface(g.faces[id-1]); err != nil {
			n.Surface = "unsupported"
		} else {
			n.Surface = info.Kind.String()
			n.Radius = info.Radius
		}
		if bag := g.attrs[id]; len(bag) > 0 {
			n.Attrs = make(map[string]NodeAttr, len(bag))
			for t, a := range bag {
				n.Attrs[t.String()] = a
			}
		}
		d.Nodes = append(d.Nodes, n)
	}
	for _, a := range g.Arcs() {
		d.Arcs = append(d.Arcs, arcDump{Arc: a, ArcInfo: g.arcs[a]})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
