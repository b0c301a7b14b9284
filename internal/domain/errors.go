package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDataSource is matched by every DataSourceError via errors.Is.
	ErrDataSource = errors.New("data source error")

	// ErrMissingColumn reports a required header that is absent from the source.
	ErrMissingColumn = errors.New("missing required column")

	// ErrNoStations reports a source with no usable rows after cleaning.
	ErrNoStations = errors.New("no usable station rows")

	// ErrNoHighRiskStations reports an empty High-risk subset, for which the
	// nearest-High distance is undefined.
	ErrNoHighRiskStations = errors.New("no high-risk stations")
)

// DataSourceError is returned when the station source cannot be read or lacks
// required columns. The assessment does not run.
type DataSourceError struct {
	Source string
	Err    error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source %q: %v", e.Source, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDataSource) match any DataSourceError.
func (e *DataSourceError) Is(target error) bool { return target == ErrDataSource }

// NewDataSourceError wraps err for the named source.
func NewDataSourceError(source string, err error) error {
	return &DataSourceError{Source: source, Err: err}
}
