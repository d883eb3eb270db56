// Package config declares the scalar, YAML-loadable parameters that drive
// one simulation run. Behavioural components (the domain schema, eras,
// templates, systems, pressures, and hooks) are Go values supplied
// programmatically by the host, not configuration data — see
// internal/worldengine.Config, which embeds *Config alongside those.
package config

// EnrichmentMode names an enrichment level: "off", "partial" or "full".
// The loader rejects any other value. The engine does not read the mode:
// wired hooks are dispatched the same way under all three values.
type EnrichmentMode string

const (
	EnrichmentOff     EnrichmentMode = "off"
	EnrichmentPartial EnrichmentMode = "partial"
	EnrichmentFull    EnrichmentMode = "full"
)

// IsValid reports whether m is one of the three recognised modes (or
// empty, meaning "off" by default).
func (m EnrichmentMode) IsValid() bool {
	switch m {
	case "", EnrichmentOff, EnrichmentPartial, EnrichmentFull:
		return true
	default:
		return false
	}
}

// RelationshipBudget bounds how many relationships may be inserted in a
// single simulation tick or growth phase (spec §4.6 / §6).
type RelationshipBudget struct {
	MaxPerSimulationTick int `yaml:"max_per_simulation_tick"`
	MaxPerGrowthPhase    int `yaml:"max_per_growth_phase"`
}

// DistributionTargets declares the desired statistical shape of the final
// graph. A nil *DistributionTargets on [Config] means distribution
// guidance is disabled: template/system selection falls back to the
// heuristic modes of spec §4.5/§4.7.
type DistributionTargets struct {
	EntityKindRatios       map[string]float64 `yaml:"entity_kind_ratios"`
	ProminenceRatios       map[string]float64 `yaml:"prominence_ratios"`
	RelationshipTypeRatios map[string]float64 `yaml:"relationship_type_ratios"`

	TargetClusters      int     `yaml:"target_clusters"`
	TargetIsolatedRatio float64 `yaml:"target_isolated_ratio"`

	// ConvergenceThreshold is the deviation a tracked axis must exceed
	// before distribution feedback bumps the mapped pressure (spec §4.3).
	ConvergenceThreshold float64 `yaml:"convergence_threshold"`

	// PressureFeedback maps a deviation axis name ("entity_kind",
	// "prominence", "relationship", "connectivity") to the ID of the
	// pressure it bumps when that axis's deviation exceeds
	// ConvergenceThreshold. This mapping is configuration, not code, per
	// spec §4.3.
	PressureFeedback map[string]string `yaml:"pressure_feedback"`
	FeedbackScale    float64           `yaml:"feedback_scale"`
	FeedbackCap      float64           `yaml:"feedback_cap"`
}

// EnrichmentConfig holds the narrative-enrichment settings (spec §6). They
// are loaded and Mode is validated, but the engine applies neither Mode
// nor the Max* caps: hook dispatch and the EnrichmentStats counters are
// not limited by them.
type EnrichmentConfig struct {
	Mode                       EnrichmentMode `yaml:"mode"`
	MaxDescriptions            int            `yaml:"max_descriptions"`
	MaxRelationshipEnrichments int            `yaml:"max_relationship_enrichments"`
	MaxEraNarratives           int            `yaml:"max_era_narratives"`
}

// ImageConfig configures the optional mythic-imagery hook queued at the
// end of a run.
type ImageConfig struct {
	Enabled   bool `yaml:"enabled"`
	MaxImages int  `yaml:"max_images"`
}

// AgingPolicy surfaces the prune/consolidate thresholds that spec §9
// flags as hard-coded in the original (50/80) and recommends exposing as
// config.
type AgingPolicy struct {
	// ForgottenAfterAge: an entity older than this with fewer than 2
	// incident edges transitions to prominence=forgotten.
	ForgottenAfterAge int `yaml:"forgotten_after_age"`

	// MortalityAge: an alive npc older than this has a MortalityChance
	// probability per epoch of transitioning to status=dead.
	MortalityAge    int     `yaml:"mortality_age"`
	MortalityChance float64 `yaml:"mortality_chance"`
}

// DefaultAgingPolicy returns the engine's default thresholds (50/80/0.3),
// matching the values hard-coded in the original system.
func DefaultAgingPolicy() AgingPolicy {
	return AgingPolicy{ForgottenAfterAge: 50, MortalityAge: 80, MortalityChance: 0.3}
}

// GrowthAlarmPolicy surfaces the excessive-growth-rate warning threshold
// that spec §9 flags as a hard-coded heuristic. The engine compares
// Threshold with the average number of entities created per epoch over
// the last WindowTicks epochs: despite its name, WindowTicks counts
// epochs, and growth is not measured per simulation tick.
type GrowthAlarmPolicy struct {
	Threshold   float64 `yaml:"threshold"`
	WindowTicks int     `yaml:"window_ticks"`
}

// DefaultGrowthAlarmPolicy returns the engine's default alarm threshold
// (30 entities per epoch, averaged over a 20-epoch window).
func DefaultGrowthAlarmPolicy() GrowthAlarmPolicy {
	return GrowthAlarmPolicy{Threshold: 30, WindowTicks: 20}
}

// PruningPolicy configures the always-present relationship-pruning system
// (spec §4.6): it runs every EveryTicks ticks, culling edges below
// Threshold strength whose endpoints are both older than Grace ticks.
type PruningPolicy struct {
	EveryTicks int     `yaml:"every_ticks"`
	Threshold  float64 `yaml:"threshold"`
	Grace      int     `yaml:"grace"`
}

// DefaultPruningPolicy returns a conservative default cadence.
func DefaultPruningPolicy() PruningPolicy {
	return PruningPolicy{EveryTicks: 5, Threshold: 0.15, Grace: 20}
}

// Config is the scalar parameter set recognised by a simulation run (spec
// §6). Behavioural components travel alongside it in
// internal/worldengine.Config, not here, since they cannot round-trip
// through YAML.
type Config struct {
	EpochsPerEra             int                  `yaml:"epochs_per_era"`
	SimulationTicksPerGrowth int                  `yaml:"simulation_ticks_per_growth"`
	TargetEntitiesPerKind    map[string]int       `yaml:"target_entities_per_kind"`
	MaxTicks                 int                  `yaml:"max_ticks"`
	RelationshipBudget       RelationshipBudget   `yaml:"relationship_budget"`
	DistributionTargets      *DistributionTargets `yaml:"distribution_targets"`
	Enrichment               EnrichmentConfig     `yaml:"enrichment"`
	Image                    ImageConfig          `yaml:"image"`
	Seed                     uint64               `yaml:"seed"`
	AgingPolicy              AgingPolicy          `yaml:"aging_policy"`
	GrowthAlarmPolicy        GrowthAlarmPolicy    `yaml:"growth_alarm_policy"`
	Pruning                  PruningPolicy        `yaml:"pruning"`
}

// ApplyDefaults fills zero-valued policy blocks with their documented
// defaults. Load and LoadFromReader call this automatically; callers
// constructing a Config by hand should call it too unless they want every
// threshold spelled out explicitly.
func (c *Config) ApplyDefaults() {
	if c.AgingPolicy == (AgingPolicy{}) {
		c.AgingPolicy = DefaultAgingPolicy()
	}
	if c.GrowthAlarmPolicy == (GrowthAlarmPolicy{}) {
		c.GrowthAlarmPolicy = DefaultGrowthAlarmPolicy()
	}
	if c.Pruning == (PruningPolicy{}) {
		c.Pruning = DefaultPruningPolicy()
	}
}

// TargetEntitiesTotal sums TargetEntitiesPerKind across all kinds.
func (c *Config) TargetEntitiesTotal() int {
	total := 0
	for _, v := range c.TargetEntitiesPerKind {
		total += v
	}
	return total
}
