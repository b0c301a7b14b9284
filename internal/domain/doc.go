// Package domain models river-gauge stations of the Ganga–Brahmaputra–Meghna
// (GBM) basin and the flood-risk assessment computed over them.
//
// # Data Source
//
// Station readings arrive as a delimited file with a header row, one row per
// gauge station. Header names are trimmed of surrounding whitespace before use.
// Required columns:
//
//	Station       display name (column name is configurable)
//	Latitude      decimal degrees, WGS-84
//	Longitude     decimal degrees, WGS-84
//	Danger Level  station flood-stage threshold reading
//
// Any other column is carried through untouched in [Station.Extra].
//
// Rows whose latitude, longitude or danger level cannot be parsed as a finite
// number are dropped by [CleanRows]. This is a data-quality filter, not an
// error: the dropped row count is reported and logged.
//
// # Assessment Stages
//
// Stages run strictly in order over the whole station set. Each stage adds
// columns; none rewrites an earlier stage's output.
//
//  1. Clean: parse and drop incomplete rows ([CleanRows]).
//  2. Classify: quantile thresholds over danger level ([Classify]).
//
//	   danger >= q75 → High | danger >= q40 → Medium | else Low
//
//  3. Proximity: geodesic km to the nearest High station, the station itself
//     included, so High stations always score 0 ([NearestHighRiskDistances]).
//  4. Index: 0.6·danger_norm + 0.4·distance_norm ([BuildIndex]).
//  5. Cluster: DBSCAN over High stations with the haversine metric on radian
//     coordinates, eps 0.5 rad, min_samples 3 ([ClusterHotspots]).
//
// # Degenerate Inputs
//
//	No usable rows          → [ErrNoStations] (wrapped in [DataSourceError])
//	No High stations        → [ErrNoHighRiskStations]
//	Danger level range 0    → danger_norm = 0 for every station
//	Max nearest distance 0  → distance_norm = 1 for every station
//
// # Distances
//
// Proximity uses the ellipsoidal WGS-84 geodesic (Karney's algorithm). The
// clusterer uses the spherical haversine central angle in radians so that eps
// stays a dimensionless angle; eps × [EarthRadiusKm] gives the physical radius
// (0.5 rad ≈ 3185 km).
package domain
