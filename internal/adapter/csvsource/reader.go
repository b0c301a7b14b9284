package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

// Reader loads gauge station files from disk.
// It implements pipeline.StationSource.
type Reader struct {
	stationColumn string
	delimiter     rune
	logger        *slog.Logger
}

// NewReader creates a Reader for delimited files whose station label lives in
// stationColumn.
func NewReader(stationColumn string, delimiter rune, logger *slog.Logger) *Reader {
	if stationColumn == "" {
		stationColumn = domain.DefaultStationColumn
	}
	if delimiter == 0 {
		delimiter = ','
	}
	return &Reader{stationColumn: stationColumn, delimiter: delimiter, logger: logger}
}

// Load opens path and decodes it into a cleaned station set.
func (r *Reader) Load(ctx context.Context, path string) (domain.StationSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.StationSet{}, domain.NewDataSourceError(path, err)
	}
	defer f.Close()

	return r.Decode(ctx, path, f)
}

// Decode reads a header row and station rows from src. Header names are
// trimmed. Rows failing the numeric checks are dropped and logged; a missing
// required column or an unreadable stream is a DataSourceError.
func (r *Reader) Decode(ctx context.Context, source string, src io.Reader) (domain.StationSet, error) {
	cr := csv.NewReader(src)
	cr.Comma = r.delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.StationSet{}, domain.NewDataSourceError(source, errors.New("empty file: no header row"))
	}
	if err != nil {
		return domain.StationSet{}, domain.NewDataSourceError(source, fmt.Errorf("read header: %w", err))
	}
	header = normalizeHeader(header)

	if missing := missingColumns(header, r.stationColumn); len(missing) > 0 {
		return domain.StationSet{}, domain.NewDataSourceError(source,
			fmt.Errorf("%w: %s", domain.ErrMissingColumn, strings.Join(missing, ", ")))
	}

	if dup := duplicateColumns(header, r.stationColumn); len(dup) > 0 {
		return domain.StationSet{}, domain.NewDataSourceError(source,
			fmt.Errorf("duplicate required column: %s", strings.Join(dup, ", ")))
	}

	var rows []domain.RawRow
	for {
		if err := ctx.Err(); err != nil {
			return domain.StationSet{}, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.StationSet{}, domain.NewDataSourceError(source, fmt.Errorf("read row: %w", err))
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, toRawRow(line, header, record))
	}

	stations, dropped := domain.CleanRows(rows, r.stationColumn)
	for _, d := range dropped {
		r.logger.Warn("dropping station row", "source", source, "line", d.Line, "reason", d.Reason)
	}
	if len(stations) == 0 {
		return domain.StationSet{}, domain.NewDataSourceError(source, domain.ErrNoStations)
	}

	r.logger.Info("station source loaded",
		"source", source,
		"rows", len(rows),
		"stations", len(stations),
		"dropped", len(dropped),
	)
	return domain.StationSet{Source: source, Stations: stations, Dropped: dropped}, nil
}

// normalizeHeader trims whitespace and a leading UTF-8 byte order mark.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func missingColumns(header []string, stationColumn string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range []string{stationColumn, domain.ColumnLatitude, domain.ColumnLongitude, domain.ColumnDangerLevel} {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// duplicateColumns lists required columns that appear more than once after trimming.
func duplicateColumns(header []string, stationColumn string) []string {
	seen := make(map[string]int, len(header))
	for _, h := range header {
		seen[h]++
	}
	var dup []string
	for _, col := range []string{stationColumn, domain.ColumnLatitude, domain.ColumnLongitude, domain.ColumnDangerLevel} {
		if seen[col] > 1 {
			dup = append(dup, col)
		}
	}
	return dup
}

// toRawRow keys a record by header name. Short rows read missing cells as empty.
func toRawRow(line int, header, record []string) domain.RawRow {
	fields := make(map[string]string, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		if i < len(record) {
			fields[h] = record[i]
		} else {
			fields[h] = ""
		}
	}
	return domain.RawRow{Line: line, Fields: fields}
}
