// Package stats accumulates per-epoch records during a run and produces
// the end-of-run statistics/fitness report consumed by a genetic-algorithm
// outer loop.
//
// The report shape (a header-like summary plus nested counter/metric
// blocks, assembled incrementally via a constructor and per-epoch
// append calls) is adapted from the teacher pack's structured
// changes-report type, reshaped from a single before/after diff into a
// rolling series of per-epoch snapshots plus one final aggregate block.
package stats

import (
	"math"

	"github.com/arcweave/worldengine/internal/distribution"
)

// EpochStats is one row recorded at the end of every epoch.
type EpochStats struct {
	Epoch int
	Tick  int

	CountsByKind    map[string]int `yaml:"counts_by_kind" json:"counts_by_kind"`
	CountsBySubtype map[string]int `yaml:"counts_by_subtype" json:"counts_by_subtype"`
	CountsByRelKind map[string]int `yaml:"counts_by_rel_kind" json:"counts_by_rel_kind"`

	Pressures map[string]float64 `yaml:"pressures" json:"pressures"`

	GrowthTarget int `yaml:"growth_target" json:"growth_target"`
	GrowthActual int `yaml:"growth_actual" json:"growth_actual"`
	GrowthRate   float64 `yaml:"growth_rate" json:"growth_rate"`
}

// DistributionStats summarizes the final graph's statistical shape
// against its configured targets.
type DistributionStats struct {
	Metrics                distribution.GraphMetrics `yaml:"metrics" json:"metrics"`
	EntityKindDeviation    float64                   `yaml:"entity_kind_deviation" json:"entity_kind_deviation"`
	ProminenceDeviation    float64                   `yaml:"prominence_deviation" json:"prominence_deviation"`
	RelationshipDeviation  float64                   `yaml:"relationship_deviation" json:"relationship_deviation"`
	ConnectivityDeviation  float64                   `yaml:"connectivity_deviation" json:"connectivity_deviation"`
}

// EnrichmentStats is an increment-only analytics block: it is updated
// whenever an enrichment hook *would* fire, whether or not a hook is
// actually registered, so fitness evaluation is independent of which
// hooks a particular run wired up.
type EnrichmentStats struct {
	EntitiesEnriched      int `yaml:"entities_enriched" json:"entities_enriched"`
	RelationshipsEnriched int `yaml:"relationships_enriched" json:"relationships_enriched"`
	ChangesEnriched       int `yaml:"changes_enriched" json:"changes_enriched"`
	EraNarrativesGenerated int `yaml:"era_narratives_generated" json:"era_narratives_generated"`
	DiscoveryEventsEnriched int `yaml:"discovery_events_enriched" json:"discovery_events_enriched"`
	ChainLinksGenerated   int `yaml:"chain_links_generated" json:"chain_links_generated"`
}

// PerformanceStats is the system-execution and safeguard accounting for
// the whole run.
type PerformanceStats struct {
	TemplateApplications      int     `yaml:"template_applications" json:"template_applications"`
	SystemExecutions          int     `yaml:"system_executions" json:"system_executions"`
	Warnings                  []string `yaml:"warnings" json:"warnings"`
	BudgetHits                int     `yaml:"budget_hits" json:"budget_hits"`
	AggressiveSystemWarnings  int     `yaml:"aggressive_system_warnings" json:"aggressive_system_warnings"`
	GrowthHistory             []int   `yaml:"growth_history" json:"growth_history"`
	ProtectedViolations       int     `yaml:"protected_violations" json:"protected_violations"`
}

// TemporalStats records wall-clock-independent, tick/epoch-denominated
// timing figures (logical ticks and epochs elapsed — never a wall-clock
// duration, per the determinism contract).
type TemporalStats struct {
	TotalTicks  int `yaml:"total_ticks" json:"total_ticks"`
	TotalEpochs int `yaml:"total_epochs" json:"total_epochs"`
}

// FitnessMetrics is the genetic-algorithm fitness block.
type FitnessMetrics struct {
	EntityDistributionFitness      float64  `yaml:"entity_distribution_fitness" json:"entity_distribution_fitness"`
	ProminenceDistributionFitness  float64  `yaml:"prominence_distribution_fitness" json:"prominence_distribution_fitness"`
	RelationshipDiversityFitness   float64  `yaml:"relationship_diversity_fitness" json:"relationship_diversity_fitness"`
	ConnectivityFitness            float64  `yaml:"connectivity_fitness" json:"connectivity_fitness"`
	OverallFitness                 float64  `yaml:"overall_fitness" json:"overall_fitness"`
	StabilityScore                 float64  `yaml:"stability_score" json:"stability_score"`
	ConstraintViolations            []string `yaml:"constraint_violations" json:"constraint_violations"`
}

// ValidationResult is produced by an external validator and folded
// unmodified into the final report.
type ValidationResult struct {
	Valid  bool     `yaml:"valid" json:"valid"`
	Issues []string `yaml:"issues" json:"issues"`
}

// SimulationStatistics is the complete end-of-run statistics/fitness
// report (spec §4.10).
type SimulationStatistics struct {
	Epochs        []EpochStats       `yaml:"epochs" json:"epochs"`
	Distribution  DistributionStats  `yaml:"distribution" json:"distribution"`
	Enrichment    EnrichmentStats    `yaml:"enrichment" json:"enrichment"`
	Validation    ValidationResult   `yaml:"validation" json:"validation"`
	Performance   PerformanceStats   `yaml:"performance" json:"performance"`
	Temporal      TemporalStats      `yaml:"temporal" json:"temporal"`
	Fitness       FitnessMetrics     `yaml:"fitness" json:"fitness"`
}

// Collector accumulates per-epoch rows and run-wide counters during a
// run, then assembles the final [SimulationStatistics] on demand.
type Collector struct {
	epochs      []EpochStats
	enrichment  EnrichmentStats
	performance PerformanceStats
}

// NewCollector returns an empty Collector, ready to append epoch rows.
func NewCollector() *Collector {
	return &Collector{
		performance: PerformanceStats{Warnings: []string{}, GrowthHistory: []int{}},
	}
}

// RecordEpoch appends one [EpochStats] row.
func (c *Collector) RecordEpoch(row EpochStats) {
	c.epochs = append(c.epochs, row)
	c.performance.GrowthHistory = append(c.performance.GrowthHistory, row.GrowthActual)
}

// RecordWarning appends a free-text warning to the run's performance log.
func (c *Collector) RecordWarning(msg string) {
	c.performance.Warnings = append(c.performance.Warnings, msg)
}

// AddEnrichment accumulates enrichment counters; the zero value of delta
// fields is a no-op, so callers can pass a partially-populated struct.
func (c *Collector) AddEnrichment(delta EnrichmentStats) {
	c.enrichment.EntitiesEnriched += delta.EntitiesEnriched
	c.enrichment.RelationshipsEnriched += delta.RelationshipsEnriched
	c.enrichment.ChangesEnriched += delta.ChangesEnriched
	c.enrichment.EraNarrativesGenerated += delta.EraNarrativesGenerated
	c.enrichment.DiscoveryEventsEnriched += delta.DiscoveryEventsEnriched
	c.enrichment.ChainLinksGenerated += delta.ChainLinksGenerated
}

// SetPerformance overwrites the run-level performance counters sourced
// from the system runner and template machinery (template applications,
// system executions, budget hits, aggressive-system warnings, protected
// violations).
func (c *Collector) SetPerformance(templateApplications, systemExecutions, budgetHits, aggressiveWarnings, protectedViolations int) {
	c.performance.TemplateApplications = templateApplications
	c.performance.SystemExecutions = systemExecutions
	c.performance.BudgetHits = budgetHits
	c.performance.AggressiveSystemWarnings = aggressiveWarnings
	c.performance.ProtectedViolations = protectedViolations
}

// Finalize assembles the end-of-run [SimulationStatistics], computing the
// distribution deviations and fitness block from metrics and the
// configured targets, and folding in the externally-produced validation
// result.
func (c *Collector) Finalize(metrics distribution.GraphMetrics, entityKindTargets, prominenceTargets, relationshipTargets map[string]float64, targetClusters int, targetIsolatedRatio float64, totalTicks, totalEpochs int, validation ValidationResult) SimulationStatistics {
	dist := DistributionStats{
		Metrics:               metrics,
		EntityKindDeviation:   distribution.Deviation(metrics.EntityKindRatios, entityKindTargets),
		ProminenceDeviation:   distribution.Deviation(metrics.ProminenceRatios, prominenceTargets),
		RelationshipDeviation: distribution.RelationshipDiversityDeviation(metrics.RelationshipTypeRatios),
		ConnectivityDeviation: distribution.ConnectivityDeviation(metrics, targetClusters, targetIsolatedRatio),
	}

	fitness := computeFitness(dist, metrics, targetIsolatedRatio, c.performance.GrowthHistory)

	return SimulationStatistics{
		Epochs:       c.epochs,
		Distribution: dist,
		Enrichment:   c.enrichment,
		Validation:   validation,
		Performance:  c.performance,
		Temporal:     TemporalStats{TotalTicks: totalTicks, TotalEpochs: totalEpochs},
		Fitness:      fitness,
	}
}

// computeFitness implements the weighted fitness formula and constraint
// checks (spec §4.10): each per-dimension fitness is 1 minus the deviation
// clamped to [0,1], overall is the 0.30/0.20/0.20/0.30 weighted sum, and
// stabilityScore is 1 minus the coefficient of variation of the growth
// history (1 when there isn't enough data to compute it).
func computeFitness(dist DistributionStats, metrics distribution.GraphMetrics, targetIsolatedRatio float64, growthHistory []int) FitnessMetrics {
	entityFitness := 1 - math.Min(1, dist.EntityKindDeviation)
	prominenceFitness := 1 - math.Min(1, dist.ProminenceDeviation)
	relationshipFitness := 1 - math.Min(1, dist.RelationshipDeviation)
	connectivityFitness := 1 - math.Min(1, dist.ConnectivityDeviation)

	overall := 0.30*entityFitness + 0.20*prominenceFitness + 0.20*relationshipFitness + 0.30*connectivityFitness

	var violations []string
	if metrics.IsolatedNodeRatio > targetIsolatedRatio {
		violations = append(violations, "isolated_node_ratio_exceeded")
	}
	if dist.EntityKindDeviation > 0.5 {
		violations = append(violations, "entity_kind_deviation_exceeded")
	}

	return FitnessMetrics{
		EntityDistributionFitness:     entityFitness,
		ProminenceDistributionFitness: prominenceFitness,
		RelationshipDiversityFitness:  relationshipFitness,
		ConnectivityFitness:           connectivityFitness,
		OverallFitness:                overall,
		StabilityScore:                stabilityScore(growthHistory),
		ConstraintViolations:          violations,
	}
}

// stabilityScore is max(0, 1 - stddev(history)/mean(history)), or 1 when
// fewer than two samples are available (insufficient data to judge
// stability, so it is not penalized).
func stabilityScore(history []int) float64 {
	if len(history) < 2 {
		return 1
	}

	mean := 0.0
	for _, v := range history {
		mean += float64(v)
	}
	mean /= float64(len(history))
	if mean == 0 {
		return 1
	}

	var variance float64
	for _, v := range history {
		d := float64(v) - mean
		variance += d * d
	}
	variance /= float64(len(history))
	stddev := math.Sqrt(variance)

	score := 1 - stddev/mean
	if score < 0 {
		return 0
	}
	return score
}
