package domain

import "math"

// NearestHighRiskDistances returns, for every station, the minimum distance in
// km to any High station. The reference set includes the station itself, so
// every High station scores exactly 0. Returns ErrNoHighRiskStations when no
// station is labelled High. dist defaults to GeodesicKm when nil.
func NearestHighRiskDistances(stations []Station, risks []Risk, dist DistanceFunc) ([]float64, error) {
	if dist == nil {
		dist = GeodesicKm
	}

	high := make([]Station, 0, len(stations))
	for i, s := range stations {
		if risks[i] == RiskHigh {
			high = append(high, s)
		}
	}
	if len(high) == 0 {
		return nil, ErrNoHighRiskStations
	}

	out := make([]float64, len(stations))
	for i, s := range stations {
		if risks[i] == RiskHigh {
			// Self-distance is part of the minimum.
			out[i] = 0
			continue
		}
		best := math.Inf(1)
		for _, h := range high {
			if d := dist(s.Latitude, s.Longitude, h.Latitude, h.Longitude); d < best {
				best = d
			}
		}
		out[i] = best
	}
	return out, nil
}
