// Package pressure implements the named scalar feedback variables (in
// [0,100]) that bias template and system selection across an epoch: each
// pressure grows by a domain-supplied function, decays by a fixed rate,
// is scaled by diminishing returns as it approaches its ceiling, modified
// by the active era, nudged by distribution feedback, then smoothed to a
// bounded per-epoch delta.
package pressure

import (
	"math"

	"github.com/arcweave/worldengine/pkg/worldgraph"
)

// Growth computes the raw, pre-scaling growth contribution for a pressure
// given the current graph state. Implementations receive a read-only
// [worldgraph.View] bounded to a single call; per the ownership model, a
// Growth must never retain it past Compute's return.
type Growth interface {
	Compute(graphView *worldgraph.View) float64
}

// FuncGrowth adapts a plain closure to [Growth], mirroring the teacher's
// functional-option idiom for optional, swappable behaviour.
type FuncGrowth func(graphView *worldgraph.View) float64

// Compute calls f.
func (f FuncGrowth) Compute(graphView *worldgraph.View) float64 { return f(graphView) }

// Pressure is one named scalar feedback variable.
type Pressure struct {
	ID     string
	Value  float64
	Decay  float64
	Growth Growth
}

// New returns a Pressure initialised to initial, clamped to [0,100].
func New(id string, initial, decay float64, growth Growth) *Pressure {
	return &Pressure{ID: id, Value: clamp(initial, 0, 100), Decay: decay, Growth: growth}
}

// Update advances p by one epoch, following the five-step formula:
//
//  1. raw = growth(graph)
//  2. scaled = raw * max(0.1, 1 - (value/100)^2)           (diminishing returns)
//  3. delta = (scaled - decay) * eraModifier + distributionFeedback
//  4. delta = clamp(delta, -15, +15)                        (smoothing)
//  5. value = clamp(value + delta, 0, 100)
//
// eraModifier defaults to 1.0 when the active era declares none for this
// pressure's ID. distributionFeedback is an additive bump computed
// upstream by the distribution tracker (0 when no axis deviates enough to
// trigger feedback). Returns the applied (pre-clamp-to-[0,100]) delta, for
// diagnostics.
func (p *Pressure) Update(graphView *worldgraph.View, eraModifier, distributionFeedback float64) float64 {
	raw := 0.0
	if p.Growth != nil {
		raw = p.Growth.Compute(graphView)
	}
	if raw < 0 {
		raw = 0
	}

	normalized := p.Value / 100
	scaled := raw * math.Max(0.1, 1-normalized*normalized)

	delta := (scaled-p.Decay)*eraModifier + distributionFeedback
	delta = clamp(delta, -15, 15)

	p.Value = clamp(p.Value+delta, 0, 100)
	return delta
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DistributionFeedback computes the additive pressure bump described in
// spec §4.3: when deviation on a tracked axis exceeds threshold, bump by
// min(deviation*scale, cap). Returns 0 when deviation does not exceed
// threshold.
func DistributionFeedback(deviation, threshold, scale, capAt float64) float64 {
	if deviation <= threshold {
		return 0
	}
	bump := deviation * scale
	if bump > capAt {
		return capAt
	}
	return bump
}
