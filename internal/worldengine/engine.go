package worldengine

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/arcweave/worldengine/internal/changedetect"
	"github.com/arcweave/worldengine/internal/distribution"
	"github.com/arcweave/worldengine/internal/era"
	"github.com/arcweave/worldengine/internal/randclock"
	"github.com/arcweave/worldengine/internal/stats"
	"github.com/arcweave/worldengine/internal/system"
	"github.com/arcweave/worldengine/internal/template"
	"github.com/arcweave/worldengine/pkg/hooks"
	"github.com/arcweave/worldengine/pkg/worldgraph"
)

// engine holds the run-scoped state the orchestrator threads through one
// call to [Run]. It is not safe for concurrent use beyond the hook
// fan-out, which is bounded by eg and awaited before engine goes out of
// scope.
type engine struct {
	cfg    *Config
	graph  *worldgraph.Graph
	rng    *randclock.Rand
	logger *slog.Logger

	runner  *system.Runner
	pruning *system.PruningSystem

	collector *stats.Collector

	// eg fans out enrichment hooks fire-and-forget; finalizeEnrichments
	// is eg.Wait(). A plain zero-value errgroup.Group (not WithContext)
	// is used deliberately: one hook's failure must not cancel its
	// siblings (spec §7 "hook failure: suppressed").
	eg errgroup.Group

	snapshots map[string]changedetect.Snapshot
	prevEraID string

	templateApplications int
}

func newEngine(cfg *Config) *engine {
	logger := cfg.logger()
	g := worldgraph.New(cfg.Domain.Schema, worldgraph.WithLogger(logger))

	budget := system.Budget{
		MaxPerSimulationTick: cfg.RelationshipBudget.MaxPerSimulationTick,
		MaxPerGrowthPhase:    cfg.RelationshipBudget.MaxPerGrowthPhase,
	}

	for _, p := range cfg.Catalog.Pressures {
		g.SetPressure(p.ID, p.Value)
	}

	return &engine{
		cfg:       cfg,
		graph:     g,
		rng:       randclock.New(cfg.Seed),
		logger:    logger,
		runner:    system.NewRunner(cfg.Catalog.Systems, budget, logger),
		pruning:   system.NewPruningSystem(cfg.Pruning.EveryTicks, cfg.Pruning.Threshold, cfg.Pruning.Grace),
		collector: stats.NewCollector(),
		snapshots: make(map[string]changedetect.Snapshot),
	}
}

// activeEra returns the era selected for the graph's current epoch.
func (e *engine) activeEra() era.Era {
	return era.Select(e.graph.Epoch(), e.cfg.Catalog.Eras, e.cfg.EpochsPerEra)
}

// shouldContinue implements the three stop conditions of spec §4.9,
// combined with OR.
func (e *engine) shouldContinue() bool {
	if e.graph.Tick() >= e.cfg.MaxTicks {
		return false
	}
	if e.graph.Epoch() >= 2*len(e.cfg.Catalog.Eras) {
		return false
	}
	if total := e.cfg.TargetEntitiesTotal(); total > 0 && e.graph.EntityCount() >= 5*total {
		return false
	}
	return true
}

// countsByKind groups the current entities by Kind.
func (e *engine) countsByKind() map[string]int {
	counts := make(map[string]int)
	for _, ent := range e.graph.FindEntities(worldgraph.EntityFilter{}) {
		counts[ent.Kind]++
	}
	return counts
}

// growthTargetForEpoch computes the per-epoch entity creation target (spec
// §4.5's GrowthTarget) from the configured per-kind targets and the
// remaining epoch budget implied by the "epoch >= 2*|eras|" stop
// condition.
func (e *engine) growthTargetForEpoch() int {
	remaining := template.Remaining(e.cfg.TargetEntitiesPerKind, e.countsByKind())
	epochsRemaining := 2*len(e.cfg.Catalog.Eras) - e.graph.Epoch()
	jitter := e.rng.Jitter(0.7, 1.3)
	return template.GrowthTarget(remaining, epochsRemaining, jitter)
}

// runGrowthPhase selects and attempts templates until either the
// candidate pool is exhausted or the per-growth-phase relationship budget
// is reached (a simplification of spec §4.6's per-tick budget applied at
// phase granularity, since the growth phase runs outside the tick loop).
func (e *engine) runGrowthPhase(activeEra era.Era, growthTarget int) {
	view := worldgraph.NewView(e.graph)

	var selected []template.Template
	if e.cfg.DistributionTargets != nil {
		deficit := distribution.DeficitByKind(e.cfg.TargetEntitiesPerKind, e.countsByKind())
		target := make(map[string]float64, len(e.cfg.TargetEntitiesPerKind))
		for k, v := range e.cfg.TargetEntitiesPerKind {
			target[k] = float64(v)
		}
		selected = template.SelectWithDistributionTargets(e.cfg.Catalog.Templates, view, activeEra, growthTarget, deficit, target, e.rng)
	} else {
		avgDeficitRatio := averageDeficitRatio(e.cfg.TargetEntitiesPerKind, e.countsByKind())
		selected = template.SelectHeuristic(e.cfg.Catalog.Templates, view, activeEra, growthTarget, avgDeficitRatio, e.rng)
	}

	phaseRelationships := 0
	for _, t := range selected {
		if phaseRelationships >= e.cfg.RelationshipBudget.MaxPerGrowthPhase {
			break
		}
		result := template.Attempt(e.graph, t, e.rng, e.logger)
		if result.Applied {
			e.templateApplications++
			phaseRelationships += result.RelationshipsAdded
		}
	}
}

func averageDeficitRatio(targets map[string]int, current map[string]int) float64 {
	if len(targets) == 0 {
		return 0
	}
	var sum float64
	for kind, target := range targets {
		if target <= 0 {
			continue
		}
		deficit := target - current[kind]
		if deficit < 0 {
			deficit = 0
		}
		sum += float64(deficit) / float64(target)
	}
	return sum / float64(len(targets))
}

// runSimulationTick advances the logical tick by one, runs every system
// through the Runner, applies the always-present pruning system if due,
// and folds the tick's pressure deltas directly into the graph.
func (e *engine) runSimulationTick(ctx context.Context, activeEra era.Era) {
	e.graph.AdvanceTick()
	tick := e.graph.Tick()

	view := worldgraph.NewView(e.graph)
	dm := distribution.Measure(view)
	modifiers := e.systemModifiers(activeEra, dm)

	report := e.runner.Tick(e.graph, modifiers, e.rng, tick)
	for id, delta := range report.PressureDeltas {
		e.graph.SetPressure(id, e.graph.Pressure(id)+delta)
	}
	if report.BudgetHit {
		warnf(e.logger, e.collector, tick, "relationship budget hit: %d dropped", report.RelationshipsDropped)
	}

	e.pruning.RunIfDue(e.graph, tick)

	if e.cfg.Metrics != nil {
		e.cfg.Metrics.RecordTick(ctx, report.RelationshipsInserted, report.RelationshipsDropped, report.BudgetHit)
		e.cfg.Metrics.RecordPressures(ctx, e.graph.Pressures())
	}

	e.graph.AppendHistory(worldgraph.HistoryEvent{
		Kind:    worldgraph.EventSimulationTick,
		Summary: "simulation tick",
	})
}

// systemModifiers computes, for every system, era modifier * distribution
// adjustment (spec §4.7). With no DistributionTargets configured, the
// adjustment factor is 1 (heuristic mode relies on era modifiers alone).
func (e *engine) systemModifiers(activeEra era.Era, dm distribution.GraphMetrics) map[string]float64 {
	modifiers := make(map[string]float64, len(e.cfg.Catalog.Systems))

	var maxSingleTypeRatio, diversityDeviation, diversityTarget float64
	useDistribution := e.cfg.DistributionTargets != nil
	if useDistribution {
		maxSingleTypeRatio = distribution.MaxRatio(e.cfg.DistributionTargets.RelationshipTypeRatios)
		diversityDeviation = distribution.RelationshipDiversityDeviation(dm.RelationshipTypeRatios)
		diversityTarget = e.cfg.DistributionTargets.ConvergenceThreshold
	}

	for _, sys := range e.cfg.Catalog.Systems {
		modifier := activeEra.SystemModifier(sys.ID())
		if useDistribution {
			adj := distribution.SystemAdjustment(sys.Metadata(), dm.RelationshipTypeRatios, maxSingleTypeRatio, diversityDeviation, diversityTarget, 1.0, 0)
			modifier *= adj
		}
		modifiers[sys.ID()] = modifier
	}
	return modifiers
}

// updatePressures runs the five-step pressure-update formula (spec §4.3)
// for every registered pressure, folding in distribution feedback when
// DistributionTargets are configured.
func (e *engine) updatePressures(activeEra era.Era) {
	view := worldgraph.NewView(e.graph)
	dm := distribution.Measure(view)

	for _, p := range e.cfg.Catalog.Pressures {
		feedback := e.distributionFeedbackFor(p.ID, dm)
		eraModifier := activeEra.PressureModifier(p.ID)
		p.Value = e.graph.Pressure(p.ID) // the graph, not the catalog entry, is authoritative between epochs
		p.Update(view, eraModifier, feedback)
		e.graph.SetPressure(p.ID, p.Value)
	}
}

// distributionFeedbackFor computes the additive pressure bump for
// pressureID, per the deviation axis mapped to it by
// DistributionTargets.PressureFeedback (spec §4.3's distribution feedback
// term). Returns 0 when DistributionTargets is nil or no axis maps to
// this pressure.
func (e *engine) distributionFeedbackFor(pressureID string, dm distribution.GraphMetrics) float64 {
	dt := e.cfg.DistributionTargets
	if dt == nil || dt.PressureFeedback == nil {
		return 0
	}
	var total float64
	for axis, mappedID := range dt.PressureFeedback {
		if mappedID != pressureID {
			continue
		}
		deviation := e.deviationForAxis(axis, dm)
		total += distribution.DistributionFeedback(deviation, dt.ConvergenceThreshold, dt.FeedbackScale, dt.FeedbackCap)
	}
	return total
}

func (e *engine) deviationForAxis(axis string, dm distribution.GraphMetrics) float64 {
	dt := e.cfg.DistributionTargets
	switch axis {
	case "entity_kind":
		return distribution.Deviation(dm.EntityKindRatios, dt.EntityKindRatios)
	case "prominence":
		return distribution.Deviation(dm.ProminenceRatios, dt.ProminenceRatios)
	case "relationship":
		return distribution.Deviation(dm.RelationshipTypeRatios, dt.RelationshipTypeRatios)
	case "connectivity":
		return distribution.ConnectivityDeviation(dm, dt.TargetClusters, dt.TargetIsolatedRatio)
	default:
		return 0
	}
}

// pruneAndConsolidate applies the aging rules of spec §3/§4.9: aged,
// poorly-connected entities fade to forgotten; aged, alive npcs may die.
// Neither transition ever removes an entity from the graph.
func (e *engine) pruneAndConsolidate() {
	aging := e.cfg.AgingPolicy
	tick := e.graph.Tick()

	for _, ent := range e.graph.FindEntities(worldgraph.EntityFilter{}) {
		age := tick - ent.CreatedAt
		if ent.Prominence != worldgraph.Forgotten && age > aging.ForgottenAfterAge {
			if incidentCount(e.graph, ent.ID) < 2 {
				_ = e.graph.UpdateEntity(ent.ID, worldgraph.EntityPartial{Prominence: prominencePtr(worldgraph.Forgotten)})
			}
		}
		if ent.Kind == "npc" && ent.Status == "alive" && age > aging.MortalityAge {
			if e.rng.Float64() < aging.MortalityChance {
				_ = e.graph.UpdateEntity(ent.ID, worldgraph.EntityPartial{Status: "dead"})
			}
		}
	}
}

// incidentCount counts relationships touching id in either direction,
// since neither [worldgraph.Graph.Neighbors] nor Entity.Links (both
// outgoing-only) capture incoming edges.
func incidentCount(g *worldgraph.Graph, id string) int {
	count := 0
	for _, r := range g.AllRelationships() {
		if r.Src == id || r.Dst == id {
			count++
		}
	}
	return count
}

func prominencePtr(p worldgraph.Prominence) *worldgraph.Prominence { return &p }

// recordEpochStats appends one EpochStats row summarizing the epoch just
// completed.
func (e *engine) recordEpochStats(growthTarget, growthActual int) {
	countsByKind := make(map[string]int)
	countsBySubtype := make(map[string]int)
	for _, ent := range e.graph.FindEntities(worldgraph.EntityFilter{}) {
		countsByKind[ent.Kind]++
		countsBySubtype[ent.Kind+"/"+ent.Subtype]++
	}
	countsByRelKind := make(map[string]int)
	for _, r := range e.graph.AllRelationships() {
		countsByRelKind[r.Kind]++
	}

	growthRate := 0.0
	if growthTarget > 0 {
		growthRate = float64(growthActual) / float64(growthTarget)
	}

	e.collector.RecordEpoch(stats.EpochStats{
		Epoch:           e.graph.Epoch(),
		Tick:            e.graph.Tick(),
		CountsByKind:    countsByKind,
		CountsBySubtype: countsBySubtype,
		CountsByRelKind: countsByRelKind,
		Pressures:       e.graph.Pressures(),
		GrowthTarget:    growthTarget,
		GrowthActual:    growthActual,
		GrowthRate:      growthRate,
	})
	e.graph.RecordGrowth(growthActual)

	e.checkGrowthAlarm()
}

// checkGrowthAlarm implements the growth-rate-alarm heuristic: if the
// average entities-created-per-epoch over the configured window exceeds
// the threshold, a warning is logged.
func (e *engine) checkGrowthAlarm() {
	policy := e.cfg.GrowthAlarmPolicy
	history := e.graph.GrowthHistory()
	if policy.WindowTicks <= 0 || len(history) < policy.WindowTicks {
		return
	}
	window := history[len(history)-policy.WindowTicks:]
	var sum int
	for _, v := range window {
		sum += v
	}
	avg := float64(sum) / float64(len(window))
	if avg > policy.Threshold {
		warnf(e.logger, e.collector, e.graph.Tick(), "excessive growth rate: avg %.1f entities/epoch over last %d epochs", avg, policy.WindowTicks)
	}
}

// queueEraNarrative fires generateEraNarrative when the active era id
// differs from the one active at the end of the previous epoch.
func (e *engine) queueEraNarrative(ctx context.Context, activeEra era.Era) {
	if activeEra.ID == e.prevEraID {
		return
	}
	from := e.prevEraID
	e.prevEraID = activeEra.ID
	e.graph.AppendHistory(worldgraph.HistoryEvent{
		Kind:    worldgraph.EventEraTransition,
		Summary: "era transition to " + activeEra.ID,
	})
	e.collector.AddEnrichment(stats.EnrichmentStats{EraNarrativesGenerated: 1})

	hook := e.cfg.Hooks.GenerateEraNarrative
	if hook == nil {
		return
	}
	req := hooks.EraNarrativeRequest{
		FromEra:   from,
		ToEra:     activeEra.ID,
		Pressures: e.graph.Pressures(),
		Tick:      e.graph.Tick(),
	}
	e.eg.Go(func() error {
		rec, err := hook(ctx, req)
		if err != nil {
			e.logger.Warn("generateEraNarrative hook failed", "error", err)
			return nil
		}
		if rec != nil {
			e.graph.AppendLoreRecord(*rec)
		}
		return nil
	})
}

// queueChangeEnrichments runs the change detector against every watched
// entity kind, queuing an enrichEntityChanges hook for any entity whose
// tier gate permits it and whose diff is non-empty.
func (e *engine) queueChangeEnrichments(ctx context.Context) {
	for _, ent := range e.graph.FindEntities(worldgraph.EntityFilter{}) {
		tier, watched := e.cfg.Domain.Tiers[ent.Kind]
		if !watched {
			continue
		}
		prior, hadPrior := e.snapshots[ent.ID]
		changes := changedetect.Changes(e.graph, ent.ID, prior, e.cfg.Domain.Watched, tier)

		if snap, ok := changedetect.Capture(e.graph, ent.ID, e.cfg.Domain.Watched); ok {
			e.snapshots[ent.ID] = snap
		}

		if !hadPrior || len(changes) == 0 {
			continue
		}

		e.collector.AddEnrichment(stats.EnrichmentStats{ChangesEnriched: 1})
		hook := e.cfg.Hooks.EnrichEntityChanges
		if hook == nil {
			continue
		}
		entityID := ent.ID
		ec := e.enrichmentContext()
		e.eg.Go(func() error {
			rec, err := hook(ctx, entityID, changes, ec)
			if err != nil {
				e.logger.Warn("enrichEntityChanges hook failed", "entity", entityID, "error", err)
				return nil
			}
			if rec != nil {
				e.graph.AppendLoreRecord(*rec)
			}
			return nil
		})
	}
}

// enrichmentContext builds the shallow, immutable snapshot hooks observe
// the graph through (spec §5's "Hooks observe the graph by value").
func (e *engine) enrichmentContext() hooks.EnrichmentContext {
	entities := make(map[string]hooks.EntitySnapshot)
	for _, ent := range e.graph.FindEntities(worldgraph.EntityFilter{}) {
		entities[ent.ID] = hooks.EntitySnapshot{
			ID:         ent.ID,
			Kind:       ent.Kind,
			Subtype:    ent.Subtype,
			Name:       ent.Name,
			Status:     ent.Status,
			Prominence: ent.Prominence.String(),
			Tags:       ent.Tags,
		}
	}
	var history []hooks.HistoryEntry
	for _, h := range e.graph.History() {
		history = append(history, hooks.HistoryEntry{Tick: h.Tick, Kind: string(h.Kind), Description: h.Summary})
	}
	return hooks.EnrichmentContext{
		Tick:           e.graph.Tick(),
		Era:            e.graph.Era(),
		Pressures:      e.graph.Pressures(),
		Entities:       entities,
		RelatedHistory: history,
	}
}

// queueInitialEnrichment fires enrichEntities once for the seeded initial
// state, preserving caller-supplied names.
func (e *engine) queueInitialEnrichment(ctx context.Context) {
	e.collector.AddEnrichment(stats.EnrichmentStats{EntitiesEnriched: 1})

	hook := e.cfg.Hooks.EnrichEntities
	if hook == nil {
		return
	}
	var ids []string
	for _, ent := range e.graph.FindEntities(worldgraph.EntityFilter{}) {
		ids = append(ids, ent.ID)
	}
	ec := e.enrichmentContext()
	e.eg.Go(func() error {
		rec, err := hook(ctx, hooks.EntityBatch{EntityIDs: ids}, ec, hooks.EnrichEntitiesOptions{PreserveNames: true})
		if err != nil {
			e.logger.Warn("enrichEntities hook failed", "error", err)
			return nil
		}
		if rec != nil {
			e.graph.AppendLoreRecord(*rec)
		}
		return nil
	})
}

// generateMythicImages fires generateMythicImage for every entity that has
// reached mythic prominence, once at the end of the run.
func (e *engine) generateMythicImages(ctx context.Context) {
	if !e.cfg.Image.Enabled {
		return
	}
	hook := e.cfg.Hooks.GenerateMythicImage
	if hook == nil {
		return
	}

	count := 0
	for _, ent := range e.graph.FindEntities(worldgraph.EntityFilter{}) {
		if ent.Prominence != worldgraph.Mythic {
			continue
		}
		if e.cfg.Image.MaxImages > 0 && count >= e.cfg.Image.MaxImages {
			break
		}
		count++
		entityID := ent.ID
		ec := e.enrichmentContext()
		e.eg.Go(func() error {
			rec, err := hook(ctx, entityID, ec)
			if err != nil {
				e.logger.Warn("generateMythicImage hook failed", "entity", entityID, "error", err)
				return nil
			}
			if rec != nil {
				e.graph.AppendLoreRecord(*rec)
			}
			return nil
		})
	}
}

// finalizeEnrichments awaits every outstanding hook task (spec §5's
// finalization suspension point).
func (e *engine) finalizeEnrichments() {
	_ = e.eg.Wait()
}
