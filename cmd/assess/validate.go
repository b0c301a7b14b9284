package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

const tolerance = 1e-9

type validateCmd struct {
	In sourceFlags `embed:""`
}

func (c *validateCmd) Run(g *globals) error {
	a, err := c.In.assess(context.Background(), g.logger)
	if err != nil {
		return err
	}
	if !report(g.stdout, a, checkAssessment(a)) {
		return errors.New("validation failed")
	}
	return nil
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func checkAssessment(a *domain.Assessment) []*phase {
	return []*phase{
		validateClassification(a),
		validateProximity(a),
		validateIndex(a),
		validateClusters(a),
	}
}

// report prints a PASS/FAIL line per phase followed by the failures.
func report(w io.Writer, a *domain.Assessment, phases []*phase) bool {
	fmt.Fprintln(w, "=== Flood Risk Assessment Validation ===")
	fmt.Fprintln(w)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-30s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stations: %d assessed, %d rows dropped\n", len(a.Stations), len(a.Dropped))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= 20 {
				fmt.Fprintf(w, "  ... and %d more\n", len(p.errors)-20)
				break
			}
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	return allPassed
}

func validateClassification(a *domain.Assessment) *phase {
	p := &phase{name: "Risk classification"}
	t := a.Thresholds
	if t.Medium > t.High {
		p.errorf("medium threshold %.4f above high threshold %.4f", t.Medium, t.High)
	}

	highs := 0
	for _, s := range a.Stations {
		var want domain.Risk
		switch {
		case s.DangerLevel >= t.High:
			want = domain.RiskHigh
		case s.DangerLevel >= t.Medium:
			want = domain.RiskMedium
		default:
			want = domain.RiskLow
		}
		if s.Risk != want {
			p.errorf("%s: danger %.3f labelled %s, want %s", s.Name, s.DangerLevel, s.Risk, want)
		}
		if s.Risk == domain.RiskHigh {
			highs++
		}
	}
	if len(a.Stations) > 0 && highs == 0 {
		p.errorf("no High stations in a non-empty set")
	}
	return p
}

func validateProximity(a *domain.Assessment) *phase {
	p := &phase{name: "Proximity to High risk"}
	high := a.HighRisk()
	for _, s := range a.Stations {
		if math.IsNaN(s.DistanceToHighRiskKm) || s.DistanceToHighRiskKm < 0 {
			p.errorf("%s: invalid distance %v", s.Name, s.DistanceToHighRiskKm)
			continue
		}
		if s.Risk == domain.RiskHigh && s.DistanceToHighRiskKm != 0 {
			p.errorf("%s: High station has distance %.3f km, want 0", s.Name, s.DistanceToHighRiskKm)
		}
		nearest := math.Inf(1)
		for _, h := range high {
			nearest = math.Min(nearest, domain.GeodesicKm(s.Latitude, s.Longitude, h.Latitude, h.Longitude))
		}
		if s.Risk != domain.RiskHigh && math.Abs(nearest-s.DistanceToHighRiskKm) > 1e-6 {
			p.errorf("%s: distance %.3f km, nearest High is %.3f km", s.Name, s.DistanceToHighRiskKm, nearest)
		}
	}
	return p
}

func validateIndex(a *domain.Assessment) *phase {
	p := &phase{name: "Composite index"}
	w := a.Params
	for _, s := range a.Stations {
		for name, v := range map[string]float64{
			"danger_norm":      s.DangerNorm,
			"distance_norm":    s.DistanceNorm,
			"flood_risk_index": s.FloodRiskIndex,
		} {
			if v < -tolerance || v > 1+tolerance || math.IsNaN(v) {
				p.errorf("%s: %s %.6f outside [0, 1]", s.Name, name, v)
			}
		}
		want := w.DangerWeight*s.DangerNorm + w.ProximityWeight*s.DistanceNorm
		if math.Abs(want-s.FloodRiskIndex) > tolerance {
			p.errorf("%s: index %.6f, want %.6f", s.Name, s.FloodRiskIndex, want)
		}
	}
	return p
}

func validateClusters(a *domain.Assessment) *phase {
	p := &phase{name: "Hotspot clusters"}
	noise := 0
	seen := make(map[int]bool)
	for _, s := range a.Stations {
		if s.Risk != domain.RiskHigh {
			if s.Cluster != nil {
				p.errorf("%s: %s station has cluster %d", s.Name, s.Risk, *s.Cluster)
			}
			continue
		}
		if s.Cluster == nil {
			p.errorf("%s: High station has no cluster label", s.Name)
			continue
		}
		switch c := *s.Cluster; {
		case c == domain.NoiseCluster:
			noise++
		case c < 0 || c >= a.ClusterCount:
			p.errorf("%s: cluster %d outside [0, %d)", s.Name, c, a.ClusterCount)
		default:
			seen[c] = true
		}
	}
	if noise != a.NoiseCount {
		p.errorf("noise count %d, labels show %d", a.NoiseCount, noise)
	}
	if len(seen) != a.ClusterCount {
		p.errorf("cluster count %d, labels show %d", a.ClusterCount, len(seen))
	}
	return p
}
