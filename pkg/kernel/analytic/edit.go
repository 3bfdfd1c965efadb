package analytic

import "github.com/chazu/defillet/pkg/kernel"

// edit accumulates a topology change against a source solid and produces the
// resulting solid plus its history. Elements that are neither dropped nor
// replaced carry over by pointer.
type edit struct {
	src *Solid

	faceMap   map[*Face]*Face
	edgeMap   map[*Edge]*Edge
	dropFaces map[*Face]bool
	dropEdges map[*Edge]bool

	newFaces []*Face
	newEdges []*Edge
	newUses  map[*Edge][]use

	hist *kernel.History
}

func newEdit(src *Solid) *edit {
	return &edit{
		src:       src,
		faceMap:   make(map[*Face]*Face),
		edgeMap:   make(map[*Edge]*Edge),
		dropFaces: make(map[*Face]bool),
		dropEdges: make(map[*Edge]bool),
		newUses:   make(map[*Edge][]use),
		hist:      kernel.NewHistory(),
	}
}

// modifyFace replaces f with a fresh copy and returns it. Repeated calls
// return the same replacement.
func (ed *edit) modifyFace(f *Face) *Face {
	if nf, ok := ed.faceMap[f]; ok {
		return nf
	}
	nf := f.clone()
	ed.faceMap[f] = nf
	ed.hist.AddModified(f, nf)
	return nf
}

// repoint replaces e by an edge whose endpoint from is moved to to.
func (ed *edit) repoint(e *Edge, from, to *Vertex) {
	ne, ok := ed.edgeMap[e]
	if !ok {
		c := *e
		ne = &c
		ed.edgeMap[e] = ne
		ed.hist.AddModified(e, ne)
	}
	if ne.V1 == from {
		ne.V1 = to
	}
	if ne.V2 == from {
		ne.V2 = to
	}
}

func (ed *edit) dropFace(f *Face) {
	if !ed.dropFaces[f] {
		ed.dropFaces[f] = true
		ed.hist.SetDeleted(f)
	}
}

func (ed *edit) dropEdge(e *Edge) {
	if !ed.dropEdges[e] {
		ed.dropEdges[e] = true
		ed.hist.SetDeleted(e)
	}
}

func (ed *edit) addFace(f *Face) { ed.newFaces = append(ed.newFaces, f) }

func (ed *edit) addEdge(e *Edge, uses ...use) {
	ed.newEdges = append(ed.newEdges, e)
	ed.newUses[e] = append(ed.newUses[e], uses...)
}

func (ed *edit) face(f *Face) *Face {
	if nf, ok := ed.faceMap[f]; ok {
		return nf
	}
	return f
}

// build produces the edited solid. Vertices referenced by the source but not
// by the result are recorded as deleted.
func (ed *edit) build() (*Solid, *kernel.History) {
	faces := make([]*Face, 0, len(ed.src.faces)+len(ed.newFaces))
	for _, f := range ed.src.faces {
		if ed.dropFaces[f] {
			continue
		}
		faces = append(faces, ed.face(f))
	}
	faces = append(faces, ed.newFaces...)

	edges := make([]*Edge, 0, len(ed.src.edges)+len(ed.newEdges))
	uses := make(map[*Edge][]use)
	for _, e := range ed.src.edges {
		if ed.dropEdges[e] {
			continue
		}
		ne := e
		if r, ok := ed.edgeMap[e]; ok {
			ne = r
		}
		edges = append(edges, ne)
		for _, u := range ed.src.uses[e] {
			if ed.dropFaces[u.face] {
				continue
			}
			uses[ne] = append(uses[ne], use{face: ed.face(u.face), sense: u.sense})
		}
	}
	for _, e := range ed.newEdges {
		edges = append(edges, e)
		for _, u := range ed.newUses[e] {
			uses[e] = append(uses[e], use{face: ed.face(u.face), sense: u.sense})
		}
	}

	live := make(map[*Vertex]bool)
	for _, e := range edges {
		live[e.V1] = true
		live[e.V2] = true
	}
	for _, e := range ed.src.edges {
		for _, v := range []*Vertex{e.V1, e.V2} {
			if !live[v] {
				ed.hist.SetDeleted(v)
			}
		}
	}

	return newSolid(faces, edges, uses), ed.hist
}
