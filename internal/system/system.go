// Package system implements the per-tick rule-application machinery:
// systems propose relationship and entity mutations, the runtime enforces
// a relationship budget and tracks per-system aggression, and a built-in
// pruning system culls decayed edges every F ticks.
//
// Per-tick accounting (budget counters, aggression totals) is modeled on
// the teacher's mutex-guarded bookkeeping in its cascading-engine package,
// adapted here to run single-threaded per the concurrency model — no
// goroutines are introduced since systems execute serially within a tick.
package system

import (
	"log/slog"

	"github.com/arcweave/worldengine/internal/randclock"
	"github.com/arcweave/worldengine/pkg/worldgraph"
)

// Result is the per-invocation outcome a [System] reports.
type Result struct {
	RelationshipsAdded []AddedRelationship
	EntitiesModified   []string
	PressureChanges    map[string]float64
	Description        string
}

// AddedRelationship is one relationship a system wants inserted, subject
// to the tick's relationship budget.
type AddedRelationship struct {
	Kind   string
	Src    string
	Dst    string
	Fields worldgraph.RelationshipFields
}

// System is a per-tick rule. Apply receives a bounded view of the graph
// plus the tick's computed modifier (era modifier * distribution
// adjustment) and returns its proposed mutations; the runtime is
// responsible for actually applying them against g (see [Runner.Tick]).
type System interface {
	ID() string
	Metadata() Metadata
	Apply(view *worldgraph.View, modifier float64, rng *randclock.Rand) (Result, error)
}

// Metadata declares static facts about a system used by the distribution
// selector in internal/distribution.
type Metadata struct {
	ProducesRelationshipKinds []string
	DiversityPositive         bool
	ClusterPositive           bool
}

// Budget bounds relationship insertions per simulation tick and per growth
// phase (spec §4.6 / §6 relationshipBudget config).
type Budget struct {
	MaxPerSimulationTick int
	MaxPerGrowthPhase    int
}

// ProbabilityCap is the ceiling every system-internal branch probability
// is clamped to before being compared against an RNG draw (spec §4.6
// "probability capping").
const ProbabilityCap = 0.95

// CapProbability clamps p to [0, ProbabilityCap].
func CapProbability(p float64) float64 {
	if p > ProbabilityCap {
		return ProbabilityCap
	}
	if p < 0 {
		return 0
	}
	return p
}

// aggressiveThresholdCount and aggressiveThresholdTicks implement the
// "aggressive system" warning rule: a system that inserts more than 500
// relationships total, with at least 20 ticks elapsed since its last
// warning, triggers a fresh warning.
const (
	aggressiveThresholdCount = 500
	aggressiveThresholdTicks = 20
)

// Runner drives one epoch's worth of simulation ticks: computing each
// system's modifier, invoking it, enforcing the relationship budget, and
// tracking aggression/warning state across ticks.
type Runner struct {
	systems []System
	budget  Budget
	logger  *slog.Logger

	totalInsertedBySystem map[string]int
	lastWarningTick       map[string]int

	executions        int
	budgetHits        int
	aggressiveWarnings int
}

// NewRunner returns a Runner over the given systems (applied in
// declaration order, per spec §5's "within a tick, systems execute in
// declaration order") enforcing budget, logging via logger.
func NewRunner(systems []System, budget Budget, logger *slog.Logger) *Runner {
	return &Runner{
		systems:               systems,
		budget:                budget,
		logger:                logger,
		totalInsertedBySystem: make(map[string]int),
		lastWarningTick:       make(map[string]int),
	}
}

// TickReport summarizes one call to [Runner.Tick].
type TickReport struct {
	RelationshipsInserted int
	RelationshipsDropped  int
	EntitiesModified      []string
	PressureDeltas        map[string]float64
	BudgetHit             bool
}

// Tick runs every non-zero-modifier system once against g, applying
// proposed relationships up to the per-tick budget (further proposals are
// counted but dropped, with a warning logged), applying entity
// modifications immediately, and accumulating pressure deltas for the
// caller to apply after clamping. System failures are caught, logged, and
// that system is skipped for this tick (spec §7).
func (r *Runner) Tick(g *worldgraph.Graph, modifiers map[string]float64, rng *randclock.Rand, tick int) TickReport {
	report := TickReport{PressureDeltas: make(map[string]float64)}
	inserted := 0

	for _, sys := range r.systems {
		modifier := modifiers[sys.ID()]
		if modifier == 0 {
			continue
		}

		r.executions++
		view := worldgraph.NewView(g)
		result, err := sys.Apply(view, modifier, rng)
		if err != nil {
			r.logger.Warn("system apply failed", "system", sys.ID(), "error", err)
			continue
		}

		for _, rel := range result.RelationshipsAdded {
			if inserted >= r.budget.MaxPerSimulationTick {
				report.RelationshipsDropped++
				report.BudgetHit = true
				continue
			}
			ok, err := g.AddRelationship(rel.Kind, rel.Src, rel.Dst, rel.Fields)
			if err != nil {
				r.logger.Warn("system relationship insert failed", "system", sys.ID(), "error", err)
				continue
			}
			if ok {
				inserted++
				report.RelationshipsInserted++
				r.totalInsertedBySystem[sys.ID()]++
			}
		}

		report.EntitiesModified = append(report.EntitiesModified, result.EntitiesModified...)
		for id, delta := range result.PressureChanges {
			report.PressureDeltas[id] += delta
		}

		r.checkAggression(sys.ID(), tick)
	}

	if report.BudgetHit {
		r.budgetHits++
		r.logger.Warn("relationship budget hit", "tick", tick, "dropped", report.RelationshipsDropped)
	}

	return report
}

// Executions is the lifetime count of per-system Apply invocations (a
// system skipped for a zero modifier is not counted).
func (r *Runner) Executions() int { return r.executions }

// BudgetHits is the number of ticks on which the relationship budget
// caused at least one proposed insertion to be dropped.
func (r *Runner) BudgetHits() int { return r.budgetHits }

// AggressiveWarnings is the lifetime count of aggressive-system warnings
// emitted across all systems.
func (r *Runner) AggressiveWarnings() int { return r.aggressiveWarnings }

// checkAggression logs an "aggressive system" warning once a system's
// lifetime relationship-insertion total passes the threshold and at least
// aggressiveThresholdTicks ticks have elapsed since its last warning.
func (r *Runner) checkAggression(systemID string, tick int) {
	if r.totalInsertedBySystem[systemID] <= aggressiveThresholdCount {
		return
	}
	last, warned := r.lastWarningTick[systemID]
	if warned && tick-last < aggressiveThresholdTicks {
		return
	}
	r.logger.Warn("aggressive system", "system", systemID, "total_relationships", r.totalInsertedBySystem[systemID], "tick", tick)
	r.lastWarningTick[systemID] = tick
	r.aggressiveWarnings++
}
