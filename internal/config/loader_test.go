package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcweave/worldengine/internal/config"
)

func TestLoadFromReader_Defaults(t *testing.T) {
	t.Parallel()

	yaml := `
max_ticks: 100
epochs_per_era: 5
simulation_ticks_per_growth: 3
relationship_budget:
  max_per_simulation_tick: 50
  max_per_growth_phase: 100
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultAgingPolicy(), cfg.AgingPolicy)
	assert.Equal(t, config.DefaultGrowthAlarmPolicy(), cfg.GrowthAlarmPolicy)
	assert.Equal(t, config.DefaultPruningPolicy(), cfg.Pruning)
}

func TestLoadFromReader_OverridesSurvive(t *testing.T) {
	t.Parallel()

	yaml := `
max_ticks: 200
epochs_per_era: 5
simulation_ticks_per_growth: 3
relationship_budget:
  max_per_simulation_tick: 50
  max_per_growth_phase: 100
aging_policy:
  forgotten_after_age: 10
  mortality_age: 20
  mortality_chance: 0.1
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Equal(t, config.AgingPolicy{ForgottenAfterAge: 10, MortalityAge: 20, MortalityChance: 0.1}, cfg.AgingPolicy)
}

func TestValidate_TableDriven(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "missing max_ticks",
			yaml: `
epochs_per_era: 1
simulation_ticks_per_growth: 1
relationship_budget: {max_per_simulation_tick: 1, max_per_growth_phase: 1}
`,
			wantErr: "max_ticks must be > 0",
		},
		{
			name: "missing epochs_per_era",
			yaml: `
max_ticks: 10
simulation_ticks_per_growth: 1
relationship_budget: {max_per_simulation_tick: 1, max_per_growth_phase: 1}
`,
			wantErr: "epochs_per_era must be > 0",
		},
		{
			name: "invalid enrichment mode",
			yaml: `
max_ticks: 10
epochs_per_era: 1
simulation_ticks_per_growth: 1
relationship_budget: {max_per_simulation_tick: 1, max_per_growth_phase: 1}
enrichment: {mode: chaotic}
`,
			wantErr: "enrichment.mode",
		},
		{
			name: "mortality chance out of range",
			yaml: `
max_ticks: 10
epochs_per_era: 1
simulation_ticks_per_growth: 1
relationship_budget: {max_per_simulation_tick: 1, max_per_growth_phase: 1}
aging_policy: {mortality_chance: 1.5}
`,
			wantErr: "mortality_chance",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()
	yaml := `
max_ticks: 10
bogus_field: true
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	require.Error(t, err)
}

func TestTargetEntitiesTotal(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{TargetEntitiesPerKind: map[string]int{"npc": 10, "location": 5}}
	assert.Equal(t, 15, cfg.TargetEntitiesTotal())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := config.Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
}
