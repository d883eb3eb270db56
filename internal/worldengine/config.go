// Package worldengine is the epoch orchestrator: the run loop that drives
// growth phases, simulation ticks, pressure updates, pruning/consolidation,
// change detection, and enrichment-hook dispatch across a full simulation
// run, following the ordered-phase shape of the teacher's cmd/glyphoxa
// run() function and the fire-and-forget task dispatch of its agent
// orchestrator.
package worldengine

import (
	"log/slog"

	"github.com/arcweave/worldengine/internal/config"
	"github.com/arcweave/worldengine/internal/changedetect"
	"github.com/arcweave/worldengine/internal/era"
	"github.com/arcweave/worldengine/internal/obs"
	"github.com/arcweave/worldengine/internal/pressure"
	"github.com/arcweave/worldengine/internal/stats"
	"github.com/arcweave/worldengine/internal/system"
	"github.com/arcweave/worldengine/internal/template"
	"github.com/arcweave/worldengine/pkg/hooks"
	"github.com/arcweave/worldengine/pkg/worldgraph"
)

// Domain bundles everything a host supplies about its particular simulated
// world: the schema, the change-detection watchlist (so the engine never
// hardcodes domain relationship strings per the design note on enrichment
// coupling), and the distribution targets expressed as ratios.
type Domain struct {
	Schema worldgraph.Schema

	// Watched configures which relationship kinds feed the change
	// detector's per-entity snapshots.
	Watched changedetect.WatchedRelationships

	// Tiers maps an entity kind to the change-detection gating tier that
	// applies to it (spec §4.8: locations/factions always emit, NPCs only
	// at renowned+, and so on). A kind absent from this map never emits
	// change-enrichment hooks.
	Tiers map[string]changedetect.Tier

	// EntityKindRatios, ProminenceRatios, and RelationshipKindRatios are
	// the target statistical shape of the final graph, consulted by
	// stats.Collector.Finalize regardless of whether DistributionTargets
	// on Config is set (a nil DistributionTargets only disables the
	// *selection-biasing* use of these ratios, not the reporting use).
	EntityKindRatios      map[string]float64
	ProminenceRatios       map[string]float64
	RelationshipKindRatios map[string]float64
}

// Catalog bundles the behavioral content of a run: the eras, templates,
// systems, and pressures a domain registers. These are Go values supplied
// programmatically, not configuration data, since CanApply/Expand/Apply
// carry executable logic.
type Catalog struct {
	Eras      []era.Era
	Templates []template.Template
	Systems   []system.System
	Pressures []*pressure.Pressure
}

// Validator is an optional external structural check run once at the end
// of a simulation and folded unmodified into the final statistics report.
type Validator interface {
	Validate(g *worldgraph.Graph) stats.ValidationResult
}

// Config is the full parameter set [Run] consumes: the scalar, YAML-
// loadable values in *config.Config alongside the behavioral components
// that cannot round-trip through YAML.
type Config struct {
	*config.Config

	Domain  Domain
	Catalog Catalog
	Hooks   hooks.Hooks

	// Validator is consulted once, after the run loop finishes, to
	// populate SimulationStatistics.Validation. A nil Validator yields
	// an always-valid result.
	Validator Validator

	// Logger receives structured warnings in the format documented by
	// the warning log (spec §6). Defaults to slog.Default() if nil.
	Logger *slog.Logger

	// Metrics is optional; when non-nil the engine records OpenTelemetry
	// instruments for epochs, ticks, pressures, and budget/violation
	// counters via internal/obs.
	Metrics *obs.Metrics
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
