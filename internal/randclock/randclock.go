// Package randclock provides the engine's single injected source of
// randomness and a logical tick/epoch counter. No core package calls
// math/rand's global functions; everything that needs entropy takes a
// *Rand. The engine keeps its tick and epoch on worldgraph.Graph and does
// not use [Clock]; wall-clock time.Now() is read only for warning
// timestamps and the epoch-duration metric, never for simulation state.
package randclock

import "math/rand/v2"

// Rand is a thin, seedable wrapper over math/rand/v2's PCG source. Two
// Rand values constructed with the same seed produce byte-identical
// sequences of draws, which is what lets a simulation run be replayed
// exactly given the same (config, initial, seed).
type Rand struct {
	r *rand.Rand
}

// New returns a Rand seeded deterministically from seed.
func New(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float64 returns a pseudo-random number in [0,1).
func (r *Rand) Float64() float64 { return r.r.Float64() }

// IntN returns a pseudo-random number in [0,n).
func (r *Rand) IntN(n int) int { return r.r.IntN(n) }

// Jitter returns a pseudo-random float uniformly drawn from [lo, hi).
func (r *Rand) Jitter(lo, hi float64) float64 {
	return lo + r.r.Float64()*(hi-lo)
}

// Shuffle randomizes the order of the first n elements accessed through
// swap, using the Fisher-Yates algorithm (same contract as math/rand's
// Shuffle).
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	r.r.Shuffle(n, swap)
}

// WeightedSampleWithoutReplacement draws up to k distinct indices into
// weights without replacement, with probability proportional to weight at
// each draw (a weight <= 0 is never selected). Used by the template and
// system selectors (§4.5/§4.7) for deviation-biased sampling.
func (r *Rand) WeightedSampleWithoutReplacement(weights []float64, k int) []int {
	if k > len(weights) {
		k = len(weights)
	}
	remaining := make([]int, 0, len(weights))
	for i, w := range weights {
		if w > 0 {
			remaining = append(remaining, i)
		}
	}

	out := make([]int, 0, k)
	for len(out) < k && len(remaining) > 0 {
		total := 0.0
		for _, idx := range remaining {
			total += weights[idx]
		}
		if total <= 0 {
			break
		}
		draw := r.r.Float64() * total
		acc := 0.0
		chosen := 0
		for i, idx := range remaining {
			acc += weights[idx]
			if draw < acc {
				chosen = i
				break
			}
			chosen = i
		}
		out = append(out, remaining[chosen])
		remaining = append(remaining[:chosen], remaining[chosen+1:]...)
	}
	return out
}

// Clock is a standalone logical tick/epoch counter. The engine does not
// use it: entity CreatedAt/UpdatedAt timestamps are ticks of
// worldgraph.Graph's own counter, not time.Time values.
type Clock struct {
	tick  int
	epoch int
}

// NewClock returns a Clock starting at tick 0, epoch 0.
func NewClock() *Clock {
	return &Clock{}
}

// Tick returns the current logical tick.
func (c *Clock) Tick() int { return c.tick }

// Epoch returns the current logical epoch.
func (c *Clock) Epoch() int { return c.epoch }

// AdvanceTick increments the tick counter and returns the new value.
func (c *Clock) AdvanceTick() int {
	c.tick++
	return c.tick
}

// AdvanceEpoch increments the epoch counter and returns the new value.
func (c *Clock) AdvanceEpoch() int {
	c.epoch++
	return c.epoch
}
