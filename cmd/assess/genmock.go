package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

// Bounding box of the Ganges-Brahmaputra-Meghna basin used for synthetic gauges.
const (
	basinSouth = 21.5
	basinNorth = 30.5
	basinWest  = 78.0
	basinEast  = 97.0
)

var basinRivers = []string{"Ganges", "Padma", "Jamuna", "Brahmaputra", "Teesta", "Meghna", "Surma"}

type genmockCmd struct {
	Stations int    `help:"Number of valid station rows." default:"40"`
	BadRows  int    `help:"Number of rows that fail the data-quality filter." default:"3"`
	Seed     uint64 `help:"Random seed; equal seeds give identical files." default:"1"`
	Out      string `help:"Output path; stdout when empty." short:"o" type:"path"`
}

func (c *genmockCmd) Run(g *globals) error {
	w := g.stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := writeSynthetic(w, c.Stations, c.BadRows, c.Seed); err != nil {
		return err
	}
	g.logger.Info("synthetic gauge file written", "stations", c.Stations, "bad_rows", c.BadRows, "out", c.Out)
	return nil
}

// writeSynthetic writes a gauge file with the required columns plus a River
// column. Bad rows are interleaved and each breaks exactly one required field.
func writeSynthetic(w io.Writer, stations, badRows int, seed uint64) error {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	cw := csv.NewWriter(w)

	header := []string{domain.DefaultStationColumn, "River", domain.ColumnLatitude, domain.ColumnLongitude, domain.ColumnDangerLevel}
	if err := cw.Write(header); err != nil {
		return err
	}

	breakers := []func(rec []string){
		func(rec []string) { rec[2] = "" },
		func(rec []string) { rec[3] = "n/a" },
		func(rec []string) { rec[4] = "NaN" },
		func(rec []string) { rec[2] = "95.0" },
	}

	total := stations + badRows
	bad := 0
	for i := range total {
		rec := []string{
			fmt.Sprintf("Gauge %03d", i+1),
			basinRivers[rng.IntN(len(basinRivers))],
			formatCoord(basinSouth + rng.Float64()*(basinNorth-basinSouth)),
			formatCoord(basinWest + rng.Float64()*(basinEast-basinWest)),
			strconv.FormatFloat(5+rng.Float64()*105, 'f', 2, 64),
		}
		// Spread bad rows evenly through the file.
		if badRows > 0 && bad < badRows && i%(total/badRows) == total/badRows-1 {
			breakers[bad%len(breakers)](rec)
			bad++
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
