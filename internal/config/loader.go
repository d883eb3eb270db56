package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path, applies defaults, and
// returns a validated [Config].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed
// from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	cfg.ApplyDefaults()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values, returning a
// joined error listing every validation failure found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.MaxTicks <= 0 {
		errs = append(errs, errors.New("max_ticks must be > 0"))
	}
	if cfg.SimulationTicksPerGrowth <= 0 {
		errs = append(errs, errors.New("simulation_ticks_per_growth must be > 0"))
	}
	if cfg.EpochsPerEra <= 0 {
		errs = append(errs, errors.New("epochs_per_era must be > 0"))
	}
	if cfg.RelationshipBudget.MaxPerSimulationTick <= 0 {
		errs = append(errs, errors.New("relationship_budget.max_per_simulation_tick must be > 0"))
	}
	if cfg.RelationshipBudget.MaxPerGrowthPhase <= 0 {
		errs = append(errs, errors.New("relationship_budget.max_per_growth_phase must be > 0"))
	}
	if !cfg.Enrichment.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("enrichment.mode %q is invalid; valid values: off, partial, full", cfg.Enrichment.Mode))
	}
	if cfg.AgingPolicy.MortalityChance < 0 || cfg.AgingPolicy.MortalityChance > 1 {
		errs = append(errs, fmt.Errorf("aging_policy.mortality_chance %.2f is out of range [0,1]", cfg.AgingPolicy.MortalityChance))
	}
	if cfg.Pruning.Threshold < 0 || cfg.Pruning.Threshold > 1 {
		errs = append(errs, fmt.Errorf("pruning.threshold %.2f is out of range [0,1]", cfg.Pruning.Threshold))
	}
	if dt := cfg.DistributionTargets; dt != nil {
		if dt.ConvergenceThreshold < 0 {
			errs = append(errs, errors.New("distribution_targets.convergence_threshold must be >= 0"))
		}
		if dt.TargetIsolatedRatio < 0 || dt.TargetIsolatedRatio > 1 {
			errs = append(errs, fmt.Errorf("distribution_targets.target_isolated_ratio %.2f is out of range [0,1]", dt.TargetIsolatedRatio))
		}
	}

	return errors.Join(errs...)
}
