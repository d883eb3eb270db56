package template

import (
	"log/slog"

	"github.com/arcweave/worldengine/internal/era"
	"github.com/arcweave/worldengine/internal/randclock"
	"github.com/arcweave/worldengine/pkg/worldgraph"
)

// DeviationBoost computes the extra selection weight a template earns for
// producing under-represented entity kinds, given the current deficit per
// kind (target-current, clamped to >=0) and each kind's target count. Only
// kinds the template's metadata declares in ProducesEntityKinds count.
func DeviationBoost(t Template, deficitByKind, targetByKind map[string]float64) float64 {
	boost := 0.0
	for _, kind := range t.Metadata().ProducesEntityKinds {
		target := targetByKind[kind]
		if target <= 0 {
			continue
		}
		boost += deficitByKind[kind] / target
	}
	return boost
}

// SelectWithDistributionTargets implements the with-distribution-targets
// selection mode of spec §4.5: filter by CanApply, then draw 3*growthTarget
// templates without replacement weighted by eraWeight * (1+deviationBoost).
func SelectWithDistributionTargets(
	templates []Template,
	view *worldgraph.View,
	activeEra era.Era,
	growthTarget int,
	deficitByKind, targetByKind map[string]float64,
	rng *randclock.Rand,
) []Template {
	applicable := filterApplicable(templates, view)
	weights := make([]float64, len(applicable))
	for i, t := range applicable {
		boost := 1 + DeviationBoost(t, deficitByKind, targetByKind)
		weights[i] = activeEra.TemplateWeight(t.ID()) * boost
	}
	draw := 3 * growthTarget
	idxs := rng.WeightedSampleWithoutReplacement(weights, draw)
	out := make([]Template, len(idxs))
	for i, idx := range idxs {
		out[i] = applicable[idx]
	}
	return out
}

// SelectHeuristic implements the no-distribution-targets fallback mode of
// spec §4.5: weight = eraWeight * (1 + averageDeficit/perKindTarget*2.5),
// clamped to [0.5, 3.0]. A template whose era weight is 0 keeps weight 0
// and is never drawn.
func SelectHeuristic(
	templates []Template,
	view *worldgraph.View,
	activeEra era.Era,
	growthTarget int,
	averageDeficitRatio float64,
	rng *randclock.Rand,
) []Template {
	applicable := filterApplicable(templates, view)
	weights := make([]float64, len(applicable))
	for i, t := range applicable {
		eraW := activeEra.TemplateWeight(t.ID())
		if eraW == 0 {
			continue // a zero era weight disables the template: weight stays 0
		}
		w := eraW * (1 + averageDeficitRatio*2.5)
		if w < 0.5 {
			w = 0.5
		}
		if w > 3.0 {
			w = 3.0
		}
		weights[i] = w
	}
	draw := 3 * growthTarget
	idxs := rng.WeightedSampleWithoutReplacement(weights, draw)
	out := make([]Template, len(idxs))
	for i, idx := range idxs {
		out[i] = applicable[idx]
	}
	return out
}

func filterApplicable(templates []Template, view *worldgraph.View) []Template {
	var out []Template
	for _, t := range templates {
		if t.CanApply(view) {
			out = append(out, t)
		}
	}
	return out
}

// AttemptResult reports the outcome of one attempted template invocation.
type AttemptResult struct {
	TemplateID       string
	Applied          bool
	EntityIDs        []string
	RelationshipsAdded int
	Err              error
}

// Attempt runs one candidate template: rechecks CanApply, draws a random
// target (if FindTargets returns any), calls Expand, and applies the
// result to g. Failures are logged via logger and reported in the
// returned AttemptResult rather than propagated — per the error-handling
// design, a template failure is caught, logged, and that template is
// skipped for this epoch while the run continues.
func Attempt(g *worldgraph.Graph, t Template, rng *randclock.Rand, logger *slog.Logger) AttemptResult {
	view := worldgraph.NewView(g)
	if !t.CanApply(view) {
		return AttemptResult{TemplateID: t.ID(), Applied: false}
	}

	targets := t.FindTargets(view)
	var target *worldgraph.Entity
	if len(targets) > 0 {
		chosen := targets[rng.IntN(len(targets))]
		target = &chosen
	}

	result, err := t.Expand(view, target, rng)
	if err != nil {
		logger.Warn("template expand failed", "template", t.ID(), "error", err)
		return AttemptResult{TemplateID: t.ID(), Applied: false, Err: err}
	}

	ids, inserted, err := Apply(g, result)
	if err != nil {
		logger.Warn("template apply failed", "template", t.ID(), "error", err)
		return AttemptResult{TemplateID: t.ID(), Applied: false, EntityIDs: ids, Err: err}
	}

	return AttemptResult{TemplateID: t.ID(), Applied: true, EntityIDs: ids, RelationshipsAdded: inserted}
}
