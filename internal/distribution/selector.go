package distribution

import "github.com/arcweave/worldengine/internal/system"

// SystemAdjustment computes the distribution-driven multiplier for a
// system's era modifier, per spec §4.7:
//   - 0.6 if the system chiefly produces an over-represented relationship
//     kind (current ratio > 0.8 * maxSingleTypeRatio).
//   - 1 + diversityImpact*strengthFactor*0.5 when relationship diversity
//     is below target and the system is diversity-positive.
//   - Analogous boosts/penalties for cluster/density are left to the
//     caller to fold in via clusterAdjustment (0 when not applicable).
//
// The result is clamped to [0.2, 2.0].
func SystemAdjustment(meta system.Metadata, relRatios map[string]float64, maxSingleTypeRatio, diversityDeviation, diversityTargetDeviation, strengthFactor, clusterAdjustment float64) float64 {
	adj := 1.0

	if overProducesDominantKind(meta, relRatios, maxSingleTypeRatio) {
		adj *= 0.6
	}

	if meta.DiversityPositive && diversityDeviation > diversityTargetDeviation {
		impact := diversityDeviation - diversityTargetDeviation
		adj *= 1 + impact*strengthFactor*0.5
	}

	if clusterAdjustment != 0 {
		adj *= 1 + clusterAdjustment
	}

	if adj < 0.2 {
		return 0.2
	}
	if adj > 2.0 {
		return 2.0
	}
	return adj
}

func overProducesDominantKind(meta system.Metadata, relRatios map[string]float64, maxSingleTypeRatio float64) bool {
	threshold := 0.8 * maxSingleTypeRatio
	for _, kind := range meta.ProducesRelationshipKinds {
		if relRatios[kind] > threshold {
			return true
		}
	}
	return false
}

// MaxRatio returns the largest value in ratios, or 0 if empty.
func MaxRatio(ratios map[string]float64) float64 {
	var max float64
	for _, v := range ratios {
		if v > max {
			max = v
		}
	}
	return max
}

// DeficitByKind returns, for every kind in targetCounts, max(0,
// target-current).
func DeficitByKind(targetCounts, currentCounts map[string]int) map[string]float64 {
	out := make(map[string]float64, len(targetCounts))
	for kind, target := range targetCounts {
		d := target - currentCounts[kind]
		if d < 0 {
			d = 0
		}
		out[kind] = float64(d)
	}
	return out
}
