package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/couchcryptid/flood-risk-etl/internal/adapter/geojson"
	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

func render(w io.Writer, a *domain.Assessment, format string, influenceRadiusKm float64) error {
	switch format {
	case "json":
		return writeIndented(w, a)
	case "geojson":
		return writeIndented(w, geojson.Build(a, geojson.Options{InfluenceRadiusKm: influenceRadiusKm}))
	case "table", "":
		return writeTable(w, a)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, a *domain.Assessment) error {
	counts := a.CountByRisk()
	fmt.Fprintf(w, "Source: %s (run %s)\n", a.Source, a.RunID)
	fmt.Fprintf(w, "Thresholds: High >= %.3f (q%.2f), Medium >= %.3f (q%.2f)\n",
		a.Thresholds.High, a.Thresholds.HighQuantile, a.Thresholds.Medium, a.Thresholds.MediumQuantile)
	fmt.Fprintf(w, "Stations: %d (High %d, Medium %d, Low %d), dropped rows: %d\n",
		len(a.Stations), counts[domain.RiskHigh], counts[domain.RiskMedium], counts[domain.RiskLow], len(a.Dropped))
	fmt.Fprintf(w, "Hotspots: %d clusters, %d noise (eps %.1f km)\n\n", a.ClusterCount, a.NoiseCount, a.ClusterEpsKm)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "STATION\tRISK\tDANGER\tDIST_KM\tDANGER_N\tDIST_N\tINDEX\tCLUSTER\t")
	for _, s := range a.Stations {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.1f\t%.3f\t%.3f\t%.3f\t%s\t\n",
			s.Name, s.Risk, s.DangerLevel, s.DistanceToHighRiskKm,
			s.DangerNorm, s.DistanceNorm, s.FloodRiskIndex, clusterLabel(s.Cluster))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, d := range a.Dropped {
		fmt.Fprintf(w, "dropped line %d: %s\n", d.Line, d.Reason)
	}
	return nil
}

func clusterLabel(c *int) string {
	switch {
	case c == nil:
		return "-"
	case *c == domain.NoiseCluster:
		return "noise"
	default:
		return strconv.Itoa(*c)
	}
}
