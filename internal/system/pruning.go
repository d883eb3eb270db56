package system

import (
	"github.com/arcweave/worldengine/internal/randclock"
	"github.com/arcweave/worldengine/pkg/worldgraph"
)

// PruningSystem is the always-present built-in system (spec §4.6) that
// walks every relationship every F ticks, removing broken edges and
// edges below strength threshold whose endpoints are both older than
// grace, unless the kind is protected or immutable. It calls
// [worldgraph.Graph.PruneRelationships] directly rather than going
// through the proposed-relationship/Result pipeline, since culling is a
// removal, not an addition subject to the budget.
type PruningSystem struct {
	everyTicks int
	threshold  float64
	grace      int
}

// NewPruningSystem returns a PruningSystem configured with the given
// cadence (F), strength threshold (tau), and grace period, sourced from
// PruningPolicy in config.
func NewPruningSystem(everyTicks int, threshold float64, grace int) *PruningSystem {
	return &PruningSystem{everyTicks: everyTicks, threshold: threshold, grace: grace}
}

// ID implements [System].
func (p *PruningSystem) ID() string { return "relationship-pruning" }

// Metadata implements [System]. Pruning produces no relationships, so it
// declares no metadata of interest to the distribution selector.
func (p *PruningSystem) Metadata() Metadata { return Metadata{} }

// Apply implements [System] but never proposes relationships through the
// Result pipeline; instead use [PruningSystem.RunIfDue] directly from the
// orchestrator's tick loop, since pruning removes edges rather than
// proposing additions bounded by the budget.
func (p *PruningSystem) Apply(view *worldgraph.View, modifier float64, rng *randclock.Rand) (Result, error) {
	return Result{}, nil
}

// RunIfDue prunes g if tick is a multiple of the configured cadence,
// returning the number of relationships removed (0 if not due).
func (p *PruningSystem) RunIfDue(g *worldgraph.Graph, tick int) int {
	if p.everyTicks <= 0 || tick%p.everyTicks != 0 {
		return 0
	}
	return g.PruneRelationships(p.grace, p.threshold)
}
