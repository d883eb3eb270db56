package worldgraph

// EntityFilter narrows [Graph.FindEntities] to entities matching all
// non-empty fields (AND semantics).
type EntityFilter struct {
	Kind    string
	Subtype string
	Status  string
}

func (f EntityFilter) matches(e *Entity) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Subtype != "" && e.Subtype != f.Subtype {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	return true
}

// GetEntity returns a copy of the entity with the given ID, or false if it
// does not exist.
func (g *Graph) GetEntity(id string) (Entity, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.entities[id]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

// FindEntities performs a linear scan over all entities matching filter,
// in insertion order.
func (g *Graph) FindEntities(filter EntityFilter) []Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Entity, 0, len(g.entityOrder))
	for _, id := range g.entityOrder {
		e := g.entities[id]
		if filter.matches(e) {
			out = append(out, *e)
		}
	}
	return out
}

// AllRelationships returns a copy of every relationship currently in the
// graph, in insertion order.
func (g *Graph) AllRelationships() []Relationship {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Relationship, len(g.relationships))
	copy(out, g.relationships)
	return out
}

// GetRelated enumerates the endpoints reachable from an entity along a
// given relKind and [Direction]. Outgoing follows src->dst edges rooted at
// from; Incoming follows dst->src edges terminating at from. This is the
// single traversal convention committed to by this package (see the design
// notes on the ambiguous "src"/"dst" direction parameter in the original
// system).
func (g *Graph) GetRelated(from, relKind string, dir Direction) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []string
	for _, r := range g.relationships {
		if r.Kind != relKind {
			continue
		}
		switch dir {
		case Outgoing:
			if r.Src == from {
				out = append(out, r.Dst)
			}
		case Incoming:
			if r.Dst == from {
				out = append(out, r.Src)
			}
		}
	}
	return out
}

// HasRelationship reports whether an edge (kind, a, b) exists with a as
// source and b as destination.
func (g *Graph) HasRelationship(a, b, kind string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hasRelationshipLocked(a, b, kind)
}

// CanFormRelationship reports whether a may form a new relKind edge: no
// edge of that kind has been formed from a within the last cooldownTicks
// ticks.
func (g *Graph) CanFormRelationship(a, relKind string, cooldownTicks int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	last, ok := g.cooldowns[cooldownKey{EntityID: a, RelKind: relKind}]
	if !ok {
		return true
	}
	return g.tick-last >= cooldownTicks
}

// AreRelationshipsCompatible reports whether forming a new relKind edge
// between a and b would contradict an existing edge between them in either
// direction, per the schema's static contradiction matrix (e.g. allied_with vs
// enemy_of).
func (g *Graph) AreRelationshipsCompatible(a, b, relKind string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, r := range g.relationships {
		if !((r.Src == a && r.Dst == b) || (r.Src == b && r.Dst == a)) {
			continue
		}
		if g.schema.Incompatible(r.Kind, relKind) {
			return false
		}
	}
	return true
}

// Neighbors performs a breadth-first traversal from entityID up to depth
// hops following Outgoing edges, returning all reachable entity IDs
// (entityID itself excluded).
func (g *Graph) Neighbors(entityID string, depth int) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[string]bool{entityID: true}
	frontier := []string{entityID}
	var out []string
	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []string
		for _, id := range frontier {
			for _, r := range g.relationships {
				if r.Src != id || visited[r.Dst] {
					continue
				}
				visited[r.Dst] = true
				out = append(out, r.Dst)
				next = append(next, r.Dst)
			}
		}
		frontier = next
	}
	return out
}
