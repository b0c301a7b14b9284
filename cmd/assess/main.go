// Command assess runs the flood-risk assessment over a gauge station file
// without starting the service.
//
// Usage:
//
//	go run ./cmd/assess run data/flood_gauges_gbm.csv --format table
//	go run ./cmd/assess validate data/flood_gauges_gbm.csv
//	go run ./cmd/assess genmock --stations 60 --out testdata/synthetic.csv
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/couchcryptid/flood-risk-etl/internal/adapter/csvsource"
	"github.com/couchcryptid/flood-risk-etl/internal/config"
	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/observability"
)

type cli struct {
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"warn" env:"LOG_LEVEL"`
	LogFormat string `help:"Log format." enum:"json,text" default:"text" env:"LOG_FORMAT"`

	Run      runCmd      `cmd:"" help:"Assess a gauge file and write the enriched stations."`
	Validate validateCmd `cmd:"" help:"Assess a gauge file and check the output invariants."`
	Genmock  genmockCmd  `cmd:"" help:"Write a synthetic gauge file."`
}

type globals struct {
	logger *slog.Logger
	stdout io.Writer
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("assess"),
		kong.Description("Flood risk assessment for Ganges-Brahmaputra-Meghna gauge stations."),
		kong.UsageOnError(),
	)
	g := &globals{
		logger: observability.NewStderrLogger(c.LogLevel, c.LogFormat),
		stdout: os.Stdout,
	}
	kctx.FatalIfErrorf(kctx.Run(g))
}

// sourceFlags are shared by commands that read and assess a gauge file.
type sourceFlags struct {
	Source            string  `arg:"" help:"Delimited gauge station file." type:"existingfile"`
	StationColumn     string  `help:"Column holding the station name." default:"Station"`
	Delimiter         string  `help:"Field delimiter; use \\t for tab." default:","`
	HighQuantile      float64 `help:"Danger-level quantile for High risk." default:"0.75"`
	MediumQuantile    float64 `help:"Danger-level quantile for Medium risk." default:"0.40"`
	DangerWeight      float64 `help:"Weight of the normalised danger level in the index; proximity gets the rest." default:"0.6"`
	ClusterEps        float64 `help:"DBSCAN neighbourhood radius in radians." default:"0.5"`
	ClusterMinSamples int     `help:"DBSCAN core point threshold, self included." default:"3"`
}

func (f *sourceFlags) params() domain.Params {
	return domain.Params{
		HighQuantile:      f.HighQuantile,
		MediumQuantile:    f.MediumQuantile,
		DangerWeight:      f.DangerWeight,
		ProximityWeight:   1 - f.DangerWeight,
		ClusterEps:        f.ClusterEps,
		ClusterMinSamples: f.ClusterMinSamples,
	}
}

func (f *sourceFlags) assess(ctx context.Context, logger *slog.Logger) (*domain.Assessment, error) {
	delim, err := config.ParseDelimiter(f.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("--delimiter: %w", err)
	}
	params := f.params()
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid assessment parameters: %w", err)
	}

	reader := csvsource.NewReader(f.StationColumn, delim, logger)
	set, err := reader.Load(ctx, f.Source)
	if err != nil {
		return nil, err
	}
	return domain.Assess(uuid.NewString(), set, params)
}

type runCmd struct {
	In sourceFlags `embed:""`

	Format            string  `help:"Output format." enum:"table,json,geojson" default:"table" short:"f"`
	Out               string  `help:"Write output to this file instead of stdout." short:"o" type:"path"`
	InfluenceRadiusKm float64 `help:"Influence ring radius for GeoJSON output, in km." default:"50"`
}

func (c *runCmd) Run(g *globals) error {
	a, err := c.In.assess(context.Background(), g.logger)
	if err != nil {
		return err
	}

	w := g.stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	return render(w, a, c.Format, c.InfluenceRadiusKm)
}
