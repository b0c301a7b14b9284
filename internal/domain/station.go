package domain

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// Column names the source must provide (after trimming).
const (
	DefaultStationColumn = "Station"
	ColumnLatitude       = "Latitude"
	ColumnLongitude      = "Longitude"
	ColumnDangerLevel    = "Danger Level"
)

// Risk is the categorical flood-risk tier assigned by Classify.
type Risk string

const (
	RiskHigh   Risk = "High"
	RiskMedium Risk = "Medium"
	RiskLow    Risk = "Low"
)

// ParseRisk matches a tier name case-insensitively.
func ParseRisk(s string) (Risk, bool) {
	for _, r := range []Risk{RiskHigh, RiskMedium, RiskLow} {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, true
		}
	}
	return "", false
}

// NoiseCluster is the DBSCAN label for High stations outside any dense cluster.
const NoiseCluster = -1

// RawRow is one source row keyed by trimmed header name.
type RawRow struct {
	Line   int
	Fields map[string]string
}

// Station is a cleaned gauge record with guaranteed finite coordinates and danger level.
type Station struct {
	Name        string            `json:"station"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	DangerLevel float64           `json:"danger_level"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// DroppedRow records why a source row was excluded during cleaning.
type DroppedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// StationSet is the cleaned output of one source load.
type StationSet struct {
	Source   string
	Stations []Station
	Dropped  []DroppedRow
}

// Clone deep-copies the set so cached copies cannot be altered by callers.
func (s StationSet) Clone() StationSet {
	out := StationSet{
		Source:   s.Source,
		Stations: make([]Station, len(s.Stations)),
		Dropped:  slices.Clone(s.Dropped),
	}
	for i, st := range s.Stations {
		st.Extra = maps.Clone(st.Extra)
		out.Stations[i] = st
	}
	return out
}

// AssessedStation is a Station enriched with every derived column.
type AssessedStation struct {
	Station
	Risk                 Risk    `json:"risk"`
	DistanceToHighRiskKm float64 `json:"distance_to_high_risk_km"`
	DangerNorm           float64 `json:"danger_norm"`
	DistanceNorm         float64 `json:"distance_norm"`
	FloodRiskIndex       float64 `json:"flood_risk_index"`
	// Cluster is set for High stations only; NoiseCluster marks noise.
	Cluster *int `json:"cluster,omitempty"`
}

// Thresholds are the danger-level quantiles computed for one run.
type Thresholds struct {
	HighQuantile   float64 `json:"high_quantile"`
	MediumQuantile float64 `json:"medium_quantile"`
	High           float64 `json:"high"`
	Medium         float64 `json:"medium"`
}

// Assessment is the output handed to the presentation layer. It is read-only
// once returned; views return copies.
type Assessment struct {
	RunID         string            `json:"run_id"`
	Source        string            `json:"source"`
	AssessedAt    time.Time         `json:"assessed_at"`
	Params        Params            `json:"params"`
	Thresholds    Thresholds        `json:"thresholds"`
	Stations      []AssessedStation `json:"stations"`
	Dropped       []DroppedRow      `json:"dropped,omitempty"`
	ClusterCount  int               `json:"cluster_count"`
	NoiseCount    int               `json:"noise_count"`
	ClusterEpsKm  float64           `json:"cluster_eps_km"`
	DistanceMaxKm float64           `json:"distance_max_km"`
}

// HighRisk returns a copy of the High stations, each carrying its cluster label.
func (a *Assessment) HighRisk() []AssessedStation {
	return a.ByRisk(RiskHigh)
}

// ByRisk returns a copy of the stations labelled r, in input order.
func (a *Assessment) ByRisk(r Risk) []AssessedStation {
	out := make([]AssessedStation, 0, len(a.Stations))
	for _, s := range a.Stations {
		if s.Risk == r {
			out = append(out, s)
		}
	}
	return out
}

// AllStations returns a copy of the enriched station table.
func (a *Assessment) AllStations() []AssessedStation {
	out := make([]AssessedStation, len(a.Stations))
	copy(out, a.Stations)
	return out
}

// CountByRisk tallies stations per tier. All three tiers are always present.
func (a *Assessment) CountByRisk() map[Risk]int {
	counts := map[Risk]int{RiskHigh: 0, RiskMedium: 0, RiskLow: 0}
	for _, s := range a.Stations {
		counts[s.Risk]++
	}
	return counts
}
