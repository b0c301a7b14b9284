// Package geojson renders an assessment as a GeoJSON FeatureCollection for
// map clients: one marker per station and an influence ring per High-risk
// station.
package geojson

import (
	"fmt"
	"html"
	"math"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

// DefaultRingVertices is the number of distinct vertices in an influence ring.
const DefaultRingVertices = 64

// Marker colours per tier.
var riskColors = map[domain.Risk]string{
	domain.RiskHigh:   "red",
	domain.RiskMedium: "orange",
	domain.RiskLow:    "green",
}

// FeatureCollection is a GeoJSON FeatureCollection (RFC 7946).
type FeatureCollection struct {
	Type     string    `json:"type"`
	BBox     []float64 `json:"bbox,omitempty"`
	Features []Feature `json:"features"`
}

// Feature is a single GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry holds a Point ([lon, lat]) or Polygon ([[[lon, lat], ...]]).
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// Options controls the influence rings.
type Options struct {
	InfluenceRadiusKm float64
	RingVertices      int
}

// Build converts an assessment into a FeatureCollection. Station markers come
// first in input order, followed by one unfilled ring per High station.
func Build(a *domain.Assessment, opts Options) FeatureCollection {
	if opts.RingVertices < 3 {
		opts.RingVertices = DefaultRingVertices
	}

	fc := FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]Feature, 0, len(a.Stations)),
	}
	for _, s := range a.Stations {
		fc.Features = append(fc.Features, stationFeature(s))
	}
	if opts.InfluenceRadiusKm > 0 {
		for _, s := range a.HighRisk() {
			fc.Features = append(fc.Features, influenceFeature(s, opts.InfluenceRadiusKm, opts.RingVertices))
		}
	}
	fc.BBox = bbox(a.Stations)
	return fc
}

// Popup is the marker popup for a station, with the index to two decimals.
func Popup(s domain.AssessedStation) string {
	return fmt.Sprintf("<b>Station:</b> %s<br><b>Risk:</b> %s<br><b>Flood Risk Index:</b> %.2f",
		html.EscapeString(s.Name), s.Risk, s.FloodRiskIndex)
}

func stationFeature(s domain.AssessedStation) Feature {
	props := map[string]any{
		"kind":                     "station",
		"station":                  s.Name,
		"risk":                     s.Risk,
		"danger_level":             s.DangerLevel,
		"distance_to_high_risk_km": s.DistanceToHighRiskKm,
		"flood_risk_index":         s.FloodRiskIndex,
		"marker-color":             riskColors[s.Risk],
		"popup":                    Popup(s),
	}
	if s.Cluster != nil {
		props["cluster"] = *s.Cluster
	}
	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: []float64{s.Longitude, s.Latitude},
		},
		Properties: props,
	}
}

func influenceFeature(s domain.AssessedStation, radiusKm float64, vertices int) Feature {
	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Polygon",
			Coordinates: [][][]float64{Ring(s.Latitude, s.Longitude, radiusKm, vertices)},
		},
		Properties: map[string]any{
			"kind":      "influence",
			"station":   s.Name,
			"radius_km": radiusKm,
			"stroke":    riskColors[domain.RiskHigh],
			"fill":      false,
		},
	}
}

// Ring approximates a geodesic circle of radiusKm around (lat, lon) as a
// closed linear ring of [lon, lat] positions, counterclockwise per RFC 7946.
func Ring(lat, lon, radiusKm float64, vertices int) [][]float64 {
	ring := make([][]float64, 0, vertices+1)
	for i := range vertices {
		// Azimuth decreasing from north walks the ring counterclockwise.
		azimuth := -360 * float64(i) / float64(vertices)
		plat, plon := domain.DestinationPoint(lat, lon, azimuth, radiusKm)
		ring = append(ring, []float64{plon, plat})
	}
	return append(ring, ring[0])
}

// bbox is [west, south, east, north] over station positions.
func bbox(stations []domain.AssessedStation) []float64 {
	if len(stations) == 0 {
		return nil
	}
	west, south := math.Inf(1), math.Inf(1)
	east, north := math.Inf(-1), math.Inf(-1)
	for _, s := range stations {
		west = math.Min(west, s.Longitude)
		east = math.Max(east, s.Longitude)
		south = math.Min(south, s.Latitude)
		north = math.Max(north, s.Latitude)
	}
	return []float64{west, south, east, north}
}
