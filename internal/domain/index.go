package domain

import "slices"

// MinMaxNormalize scales values to [0, 1] as (x-min)/(max-min). A zero range
// maps every value to 0.
func MinMaxNormalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := slices.Min(values), slices.Max(values)
	span := hi - lo
	if span == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}

// ProximityNormalize maps distances to 1 - d/max(d), so the closest station
// scores 1 and the farthest 0. When every distance is 0 all stations score 1.
func ProximityNormalize(distances []float64) []float64 {
	out := make([]float64, len(distances))
	if len(distances) == 0 {
		return out
	}
	hi := slices.Max(distances)
	for i, d := range distances {
		if hi == 0 {
			out[i] = 1
			continue
		}
		out[i] = 1 - d/hi
	}
	return out
}

// IndexColumns holds the composite-index columns for a station set.
type IndexColumns struct {
	DangerNorm     []float64
	DistanceNorm   []float64
	FloodRiskIndex []float64
}

// BuildIndex blends normalized danger level and proximity into the flood risk
// index: dangerWeight·danger_norm + proximityWeight·distance_norm.
func BuildIndex(dangerLevels, distances []float64, dangerWeight, proximityWeight float64) IndexColumns {
	cols := IndexColumns{
		DangerNorm:   MinMaxNormalize(dangerLevels),
		DistanceNorm: ProximityNormalize(distances),
	}
	cols.FloodRiskIndex = make([]float64, len(dangerLevels))
	for i := range cols.FloodRiskIndex {
		cols.FloodRiskIndex[i] = dangerWeight*cols.DangerNorm[i] + proximityWeight*cols.DistanceNorm[i]
	}
	return cols
}
