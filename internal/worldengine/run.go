package worldengine

import (
	"context"
	"errors"
	"time"

	"github.com/arcweave/worldengine/internal/distribution"
	"github.com/arcweave/worldengine/internal/stats"
	"github.com/arcweave/worldengine/pkg/worldgraph"
)

// Run drives one full simulation from initial to finished, following the
// ordered phases of spec §4.9: seed the graph, dispatch the initial
// enrichment hook, then repeatedly run a growth phase followed by a
// fixed number of simulation ticks until a stop condition fires, finally
// awaiting every outstanding hook, generating mythic imagery, validating,
// and assembling the statistics report.
func Run(ctx context.Context, cfg *Config, initial []InitialEntity) (*worldgraph.Graph, *stats.SimulationStatistics, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, nil, err
	}

	eng := newEngine(cfg)
	g := eng.graph

	seed(g, initial)
	g.AppendHistory(worldgraph.HistoryEvent{Kind: worldgraph.EventWorldInitialized, Summary: "world initialized"})
	eng.prevEraID = eng.activeEra().ID
	g.SetEra(eng.prevEraID)

	eng.queueInitialEnrichment(ctx)

	for eng.shouldContinue() {
		epochStart := time.Now()
		activeEra := eng.activeEra()
		g.SetEra(activeEra.ID)

		growthTarget := eng.growthTargetForEpoch()
		growthBefore := g.EntityCount()
		eng.runGrowthPhase(activeEra, growthTarget)
		growthActual := g.EntityCount() - growthBefore

		for i := 0; i < cfg.SimulationTicksPerGrowth; i++ {
			eng.runSimulationTick(ctx, activeEra)
		}

		if activeEra.SpecialRules != nil {
			activeEra.SpecialRules(g)
		}

		eng.updatePressures(activeEra)
		eng.pruneAndConsolidate()
		eng.recordEpochStats(growthTarget, growthActual)

		g.AdvanceEpoch()
		nextEra := eng.activeEra()
		eng.queueEraNarrative(ctx, nextEra)
		eng.queueChangeEnrichments(ctx)

		if cfg.Metrics != nil {
			cfg.Metrics.RecordEpoch(ctx, time.Since(epochStart).Seconds())
		}
	}

	eng.finalizeEnrichments()
	eng.generateMythicImages(ctx)
	eng.finalizeEnrichments()

	validation := stats.ValidationResult{Valid: true}
	if cfg.Validator != nil {
		validation = cfg.Validator.Validate(g)
	}

	finalView := worldgraph.NewView(g)
	metrics := distribution.Measure(finalView)

	if cfg.Metrics != nil {
		for range g.Violations() {
			cfg.Metrics.RecordProtectedViolation(ctx)
		}
	}

	eng.collector.SetPerformance(
		eng.templateApplications,
		eng.runner.Executions(),
		eng.runner.BudgetHits(),
		eng.runner.AggressiveWarnings(),
		len(g.Violations()),
	)

	targetClusters, targetIsolatedRatio := 0, 0.0
	if cfg.DistributionTargets != nil {
		targetClusters = cfg.DistributionTargets.TargetClusters
		targetIsolatedRatio = cfg.DistributionTargets.TargetIsolatedRatio
	}

	result := eng.collector.Finalize(
		metrics,
		eng.cfg.Domain.EntityKindRatios,
		eng.cfg.Domain.ProminenceRatios,
		eng.cfg.Domain.RelationshipKindRatios,
		targetClusters,
		targetIsolatedRatio,
		g.Tick(),
		g.Epoch(),
		validation,
	)

	return g, &result, nil
}

// validateConfig checks the handful of invariants Run itself depends on
// beyond what config.Validate already enforces on the embedded scalar
// config (an empty era list would make era.Select panic, and a nil Schema
// would make every graph mutation fail).
func validateConfig(cfg *Config) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("worldengine: nil config")
	}
	if cfg.Domain.Schema == nil {
		return errors.New("worldengine: domain schema is required")
	}
	if len(cfg.Catalog.Eras) == 0 {
		return errors.New("worldengine: at least one era is required")
	}
	return nil
}
