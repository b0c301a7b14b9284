package domain

import (
	"errors"
	"fmt"
	"math"
)

// Default assessment parameters.
const (
	DefaultHighQuantile      = 0.75
	DefaultMediumQuantile    = 0.40
	DefaultDangerWeight      = 0.6
	DefaultProximityWeight   = 0.4
	DefaultClusterEps        = 0.5 // radians on the unit sphere
	DefaultClusterMinSamples = 3
)

// Params controls the thresholds and weights of one assessment.
type Params struct {
	HighQuantile      float64 `json:"high_quantile"`
	MediumQuantile    float64 `json:"medium_quantile"`
	DangerWeight      float64 `json:"danger_weight"`
	ProximityWeight   float64 `json:"proximity_weight"`
	ClusterEps        float64 `json:"cluster_eps_radians"`
	ClusterMinSamples int     `json:"cluster_min_samples"`
}

// DefaultParams returns the standard GBM assessment parameters.
func DefaultParams() Params {
	return Params{
		HighQuantile:      DefaultHighQuantile,
		MediumQuantile:    DefaultMediumQuantile,
		DangerWeight:      DefaultDangerWeight,
		ProximityWeight:   DefaultProximityWeight,
		ClusterEps:        DefaultClusterEps,
		ClusterMinSamples: DefaultClusterMinSamples,
	}
}

// weightTolerance absorbs float error when checking that weights sum to 1.
const weightTolerance = 1e-9

// Validate reports parameter combinations that would push the index out of [0, 1]
// or make classification or clustering meaningless.
func (p Params) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"high quantile", p.HighQuantile},
		{"medium quantile", p.MediumQuantile},
		{"danger weight", p.DangerWeight},
		{"proximity weight", p.ProximityWeight},
		{"cluster eps", p.ClusterEps},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be finite, got %g", f.name, f.v)
		}
	}
	if p.MediumQuantile < 0 || p.HighQuantile > 1 || p.MediumQuantile > p.HighQuantile {
		return fmt.Errorf("quantiles must satisfy 0 <= medium (%g) <= high (%g) <= 1", p.MediumQuantile, p.HighQuantile)
	}
	if p.DangerWeight < 0 || p.ProximityWeight < 0 {
		return errors.New("index weights must be non-negative")
	}
	if math.Abs(p.DangerWeight+p.ProximityWeight-1) > weightTolerance {
		return fmt.Errorf("index weights must sum to 1, got %g", p.DangerWeight+p.ProximityWeight)
	}
	if p.ClusterEps <= 0 || p.ClusterEps > math.Pi {
		return fmt.Errorf("cluster eps must be in (0, pi] radians, got %g", p.ClusterEps)
	}
	if p.ClusterMinSamples < 1 {
		return fmt.Errorf("cluster min samples must be >= 1, got %d", p.ClusterMinSamples)
	}
	return nil
}
