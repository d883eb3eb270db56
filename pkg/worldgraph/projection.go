package worldgraph

// ProjectionNode is one node in a [Graph.Projection] output, suitable for
// feeding a GraphViz-like renderer.
type ProjectionNode struct {
	ID         string
	Kind       string
	Subtype    string
	Name       string
	Prominence string
}

// ProjectionEdge is one edge in a [Graph.Projection] output.
type ProjectionEdge struct {
	Kind string
	Src  string
	Dst  string
}

// Projection derives a minimal {nodes, edges} view of the graph suitable
// for external visualisation tooling. It is a pure read; no state is
// retained between calls.
func (g *Graph) Projection() ([]ProjectionNode, []ProjectionEdge) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]ProjectionNode, 0, len(g.entityOrder))
	for _, id := range g.entityOrder {
		e := g.entities[id]
		nodes = append(nodes, ProjectionNode{
			ID:         e.ID,
			Kind:       e.Kind,
			Subtype:    e.Subtype,
			Name:       e.Name,
			Prominence: e.Prominence.String(),
		})
	}

	edges := make([]ProjectionEdge, 0, len(g.relationships))
	for _, r := range g.relationships {
		edges = append(edges, ProjectionEdge{Kind: r.Kind, Src: r.Src, Dst: r.Dst})
	}

	return nodes, edges
}
