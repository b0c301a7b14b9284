package domain

import (
	"math"
	"slices"
)

// Quantile returns the q-th quantile of values using linear interpolation
// between closest ranks: position (n-1)·q in the sorted data. values is not
// modified. Returns NaN for an empty slice or a q outside [0, 1].
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 || !(q >= 0 && q <= 1) {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	pos := float64(len(sorted)-1) * q
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Classify computes quantile thresholds over the danger levels of stations and
// labels each one. Comparisons are >= so boundary ties go to the higher tier.
func Classify(stations []Station, highQ, mediumQ float64) (Thresholds, []Risk) {
	levels := make([]float64, len(stations))
	for i, s := range stations {
		levels[i] = s.DangerLevel
	}

	th := Thresholds{
		HighQuantile:   highQ,
		MediumQuantile: mediumQ,
		High:           Quantile(levels, highQ),
		Medium:         Quantile(levels, mediumQ),
	}

	risks := make([]Risk, len(levels))
	for i, v := range levels {
		risks[i] = th.classify(v)
	}
	return th, risks
}

func (t Thresholds) classify(danger float64) Risk {
	switch {
	case danger >= t.High:
		return RiskHigh
	case danger >= t.Medium:
		return RiskMedium
	default:
		return RiskLow
	}
}
