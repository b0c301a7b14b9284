package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CleanRows converts raw rows into Stations, dropping any row whose latitude,
// longitude or danger level is missing, unparseable, non-finite or out of
// range. nameColumn selects the station label column.
func CleanRows(rows []RawRow, nameColumn string) ([]Station, []DroppedRow) {
	stations := make([]Station, 0, len(rows))
	var dropped []DroppedRow

	for _, row := range rows {
		st, err := cleanRow(row, nameColumn)
		if err != nil {
			dropped = append(dropped, DroppedRow{Line: row.Line, Reason: err.Error()})
			continue
		}
		stations = append(stations, st)
	}
	return stations, dropped
}

func cleanRow(row RawRow, nameColumn string) (Station, error) {
	lat, err := parseFinite(row.Fields, ColumnLatitude)
	if err != nil {
		return Station{}, err
	}
	lon, err := parseFinite(row.Fields, ColumnLongitude)
	if err != nil {
		return Station{}, err
	}
	danger, err := parseFinite(row.Fields, ColumnDangerLevel)
	if err != nil {
		return Station{}, err
	}
	if lat < -90 || lat > 90 {
		return Station{}, fmt.Errorf("%s %g out of range", ColumnLatitude, lat)
	}
	if lon < -180 || lon > 180 {
		return Station{}, fmt.Errorf("%s %g out of range", ColumnLongitude, lon)
	}

	var extra map[string]string
	for k, v := range row.Fields {
		switch k {
		case nameColumn, ColumnLatitude, ColumnLongitude, ColumnDangerLevel:
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[k] = v
	}

	return Station{
		Name:        strings.TrimSpace(row.Fields[nameColumn]),
		Latitude:    lat,
		Longitude:   lon,
		DangerLevel: danger,
		Extra:       extra,
	}, nil
}

// parseFinite parses a numeric cell, rejecting empty, NaN and infinite values.
func parseFinite(fields map[string]string, column string) (float64, error) {
	raw := strings.TrimSpace(fields[column])
	if raw == "" {
		return 0, fmt.Errorf("%s is empty", column)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not numeric", column, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s %q is not finite", column, raw)
	}
	return v, nil
}
