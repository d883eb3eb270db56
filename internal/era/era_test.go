package era_test

import (
	"testing"

	"github.com/arcweave/worldengine/internal/era"
)

func testEras() []era.Era {
	return []era.Era{
		{ID: "dawn", TemplateWeights: map[string]float64{"settle": 2.0}},
		{ID: "expansion", SystemModifiers: map[string]float64{"war": 1.5}},
		{ID: "twilight", TemplateWeights: map[string]float64{"settle": 0}},
	}
}

func TestSelectWithinRange(t *testing.T) {
	t.Parallel()
	eras := testEras()

	cases := []struct {
		epoch, epochsPerEra int
		wantID              string
	}{
		{0, 5, "dawn"},
		{4, 5, "dawn"},
		{5, 5, "expansion"},
		{10, 5, "twilight"},
	}
	for _, tc := range cases {
		got := era.Select(tc.epoch, eras, tc.epochsPerEra)
		if got.ID != tc.wantID {
			t.Errorf("Select(%d, _, %d) = %q, want %q", tc.epoch, tc.epochsPerEra, got.ID, tc.wantID)
		}
	}
}

func TestSelectClampsPastLastEra(t *testing.T) {
	t.Parallel()
	eras := testEras()
	got := era.Select(1000, eras, 5)
	if got.ID != "twilight" {
		t.Fatalf("expected clamping to the final era, got %q", got.ID)
	}
}

func TestTemplateWeightDefaultsToOne(t *testing.T) {
	t.Parallel()
	e := era.Era{TemplateWeights: map[string]float64{"settle": 2.0}}
	if e.TemplateWeight("settle") != 2.0 {
		t.Fatalf("expected configured weight 2.0, got %v", e.TemplateWeight("settle"))
	}
	if e.TemplateWeight("unconfigured") != 1.0 {
		t.Fatalf("expected default weight 1.0, got %v", e.TemplateWeight("unconfigured"))
	}
}

func TestZeroWeightDisablesTemplate(t *testing.T) {
	t.Parallel()
	eras := testEras()
	twilight := eras[2]
	if twilight.TemplateWeight("settle") != 0 {
		t.Fatalf("expected explicit zero weight to disable the template, got %v", twilight.TemplateWeight("settle"))
	}
}

func TestSystemModifierDefaultsToOne(t *testing.T) {
	t.Parallel()
	e := era.Era{SystemModifiers: map[string]float64{"war": 1.5}}
	if e.SystemModifier("war") != 1.5 {
		t.Fatalf("expected 1.5, got %v", e.SystemModifier("war"))
	}
	if e.SystemModifier("peace") != 1.0 {
		t.Fatalf("expected default 1.0, got %v", e.SystemModifier("peace"))
	}
}
