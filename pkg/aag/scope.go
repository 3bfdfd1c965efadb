package aag

// visible reports whether id is registered and inside the active scope.
func (g *Graph) visible(id int) bool {
	if !g.nodes.Has(id) {
		return false
	}
	if len(g.scopes) == 0 {
		return true
	}
	return g.scopes[len(g.scopes)-1].Has(id)
}

// scopeNodes returns the ids visible under the active scope.
func (g *Graph) scopeNodes() IDSet {
	if len(g.scopes) == 0 {
		return g.nodes.Clone()
	}
	out := make(IDSet)
	for id := range g.scopes[len(g.scopes)-1] {
		if g.nodes.Has(id) {
			out.Add(id)
		}
	}
	return out
}

// PushSubgraph restricts read queries to ids. Ids not in the graph are
// ignored.
func (g *Graph) PushSubgraph(ids IDSet) {
	top := make(IDSet, len(ids))
	for id := range ids {
		if g.nodes.Has(id) {
			top.Add(id)
		}
	}
	g.scopes = append(g.scopes, top)
}

// PushSubgraphX restricts read queries to the current scope minus exclude.
func (g *Graph) PushSubgraphX(exclude IDSet) {
	top := g.scopeNodes()
	top.Subtract(exclude)
	g.scopes = append(g.scopes, top)
}

// PopSubgraph removes the innermost scope.
func (g *Graph) PopSubgraph() error {
	if len(g.scopes) == 0 {
		return ErrScopeUnderflow
	}
	g.scopes = g.scopes[:len(g.scopes)-1]
	return nil
}

// PopSubgraphs clears the scope stack.
func (g *Graph) PopSubgraphs() { g.scopes = nil }

// ScopeDepth returns the number of active scopes.
func (g *Graph) ScopeDepth() int { return len(g.scopes) }
