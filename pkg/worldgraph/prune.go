package worldgraph

// PruneRelationships performs one pass of the relationship-pruning rule set
// (see the system-runtime design notes): broken edges (a missing endpoint)
// are always removed; edges with Strength below threshold whose both
// endpoints are older than graceTicks are removed unless their kind is
// protected or immutable, in which case the violation is recorded (via
// [Graph.Violations]) but the edge is kept (invariants 7 and 8).
//
// Returns the number of edges actually removed.
func (g *Graph) PruneRelationships(graceTicks int, threshold float64) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := g.removeRelationshipsLocked(func(r Relationship) bool {
		srcEnt, srcOK := g.entities[r.Src]
		dstEnt, dstOK := g.entities[r.Dst]
		if !srcOK || !dstOK {
			return false // broken edge: drop
		}

		if r.Strength >= threshold {
			return true // keep: above threshold
		}

		srcAge := g.tick - srcEnt.CreatedAt
		dstAge := g.tick - dstEnt.CreatedAt
		if srcAge <= graceTicks || dstAge <= graceTicks {
			return true // keep: still within grace period
		}

		if g.schema.IsProtected(r.Kind) || g.schema.IsImmutable(r.Kind) {
			g.recordViolation(r.Kind, r.Src, r.Dst)
			return true // keep: protected/immutable, violation only
		}

		return false // cull
	})

	return removed
}
