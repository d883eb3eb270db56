// Package era implements the phase-modifier lookup that drives template
// weighting and system modifiers across the run: the active era is a pure
// function of the current epoch, following the teacher's config-registry
// convention of named, declaratively-weighted entries.
package era

import "github.com/arcweave/worldengine/pkg/worldgraph"

// SpecialRules is an optional, era-specific closure invoked once at the
// end of every epoch this era is active for, mirroring the teacher's
// optional-hook convention (VoiceEngine.OnToolCall): most eras leave this
// nil.
type SpecialRules func(g *worldgraph.Graph)

// Era is one named phase of the simulation: a bundle of template weights,
// system modifiers, optional pressure multipliers, and an optional
// special-rules hook.
type Era struct {
	ID                string
	Name              string
	TemplateWeights   map[string]float64
	SystemModifiers   map[string]float64
	PressureModifiers map[string]float64
	SpecialRules      SpecialRules
}

// TemplateWeight returns the configured weight for templateID, defaulting
// to 1.0 when this era declares none (per spec §4.4: "a zero weight
// disables a template/system; the default is 1.0").
func (e Era) TemplateWeight(templateID string) float64 {
	if w, ok := e.TemplateWeights[templateID]; ok {
		return w
	}
	return 1.0
}

// SystemModifier returns the configured modifier for systemID, defaulting
// to 1.0 when this era declares none.
func (e Era) SystemModifier(systemID string) float64 {
	if m, ok := e.SystemModifiers[systemID]; ok {
		return m
	}
	return 1.0
}

// PressureModifier returns the configured multiplier for pressureID,
// defaulting to 1.0 when this era declares none.
func (e Era) PressureModifier(pressureID string) float64 {
	if m, ok := e.PressureModifiers[pressureID]; ok {
		return m
	}
	return 1.0
}

// Select returns eras[min(epoch/epochsPerEra, len(eras)-1)], the engine's
// fixed era-selection rule. Select panics if eras is empty; the
// orchestrator is responsible for rejecting an empty era list at
// configuration time.
func Select(epoch int, eras []Era, epochsPerEra int) Era {
	if epochsPerEra <= 0 {
		epochsPerEra = 1
	}
	idx := epoch / epochsPerEra
	if idx >= len(eras) {
		idx = len(eras) - 1
	}
	return eras[idx]
}
