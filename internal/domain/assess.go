package domain

import (
	"fmt"
	"math"
	"slices"
)

// Assess runs the classify, proximity, index and cluster stages over a cleaned
// station set. The set is not modified. runID labels the result.
func Assess(runID string, set StationSet, p Params) (*Assessment, error) {
	stations := set.Stations
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if len(stations) == 0 {
		return nil, NewDataSourceError(set.Source, ErrNoStations)
	}

	thresholds, risks := Classify(stations, p.HighQuantile, p.MediumQuantile)

	distances, err := NearestHighRiskDistances(stations, risks, GeodesicKm)
	if err != nil {
		return nil, fmt.Errorf("proximity: %w", err)
	}

	levels := make([]float64, len(stations))
	for i, s := range stations {
		levels[i] = s.DangerLevel
	}
	index := BuildIndex(levels, distances, p.DangerWeight, p.ProximityWeight)

	hotspots := ClusterHotspots(stations, risks, p.ClusterEps, p.ClusterMinSamples)

	assessed := make([]AssessedStation, len(stations))
	for i, s := range stations {
		assessed[i] = AssessedStation{
			Station:              s,
			Risk:                 risks[i],
			DistanceToHighRiskKm: distances[i],
			DangerNorm:           index.DangerNorm[i],
			DistanceNorm:         index.DistanceNorm[i],
			FloodRiskIndex:       index.FloodRiskIndex[i],
			Cluster:              hotspots.Labels[i],
		}
	}

	return &Assessment{
		RunID:         runID,
		Source:        set.Source,
		AssessedAt:    clock.Now().UTC(),
		Params:        p,
		Thresholds:    thresholds,
		Stations:      assessed,
		Dropped:       slices.Clone(set.Dropped),
		ClusterCount:  hotspots.Clusters,
		NoiseCount:    hotspots.Noise,
		ClusterEpsKm:  p.ClusterEps * EarthRadiusKm,
		DistanceMaxKm: maxOrZero(distances),
	}, nil
}

func maxOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return math.Max(0, slices.Max(values))
}
