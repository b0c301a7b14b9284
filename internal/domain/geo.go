package domain

import (
	"math"

	"github.com/tidwall/geodesic"
)

// EarthRadiusKm is the mean Earth radius used to turn haversine angles into km.
const EarthRadiusKm = 6371.0

// DistanceFunc returns the distance in km between two lat/lon points in degrees.
type DistanceFunc func(lat1, lon1, lat2, lon2 float64) float64

// GeodesicKm is the WGS-84 ellipsoidal geodesic distance in km.
func GeodesicKm(lat1, lon1, lat2, lon2 float64) float64 {
	var meters float64
	geodesic.WGS84.Inverse(lat1, lon1, lat2, lon2, &meters, nil, nil)
	return meters / 1000
}

// HaversineRadians is the great-circle central angle between two points given
// in radians, i.e. the haversine distance on the unit sphere.
func HaversineRadians(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat2 - lat1
	dLon := lon2 - lon1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * math.Asin(math.Min(1, math.Sqrt(a)))
}

// HaversineKm is the spherical great-circle distance in km for degree inputs.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	return EarthRadiusKm * HaversineRadians(toRadians(lat1), toRadians(lon1), toRadians(lat2), toRadians(lon2))
}

// DestinationPoint solves the direct geodesic problem: the point reached from
// (lat, lon) after travelling distanceKm on the given azimuth (degrees from north).
func DestinationPoint(lat, lon, azimuth, distanceKm float64) (float64, float64) {
	var lat2, lon2 float64
	geodesic.WGS84.Direct(lat, lon, azimuth, distanceKm*1000, &lat2, &lon2, nil)
	return lat2, lon2
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
