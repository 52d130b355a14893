// Package ridership turns raw per-station, per-hour subway ridership rows into
// the derived tables and headline metrics the dashboard plots.
//
// Every function in this package is pure: inputs are never modified and every
// result is a freshly allocated value that the caller owns.
package ridership

import (
	"slices"
	"time"
)

// Source column names. They are part of the input contract.
const (
	ColTimestamp        = "transit_timestamp"
	ColStationComplexID = "station_complex_id"
	ColStationComplex   = "station_complex"
	ColLatitude         = "latitude"
	ColLongitude        = "longitude"
	ColBorough          = "borough"
	ColRidership        = "ridership"
)

// AllColumns lists the source columns in their canonical order.
var AllColumns = []string{
	ColTimestamp,
	ColStationComplexID,
	ColStationComplex,
	ColLatitude,
	ColLongitude,
	ColBorough,
	ColRidership,
}

// RawRecord is one hourly entry count for a station complex, as loaded.
type RawRecord struct {
	Timestamp        string
	StationComplexID string
	StationComplex   string
	Latitude         float64
	Longitude        float64
	Borough          string
	Ridership        int
}

// RawBatch is a loaded snapshot together with the columns the source carried.
type RawBatch struct {
	Columns Columns
	Rows    []RawRecord
}

// OutputSource names a loaded batch in a MissingColumnError.
const OutputSource = "source"

// RequiredSourceColumns are the columns without which no row can be cleaned.
var RequiredSourceColumns = []string{ColTimestamp, ColStationComplex, ColRidership}

// Validate fails with a MissingColumnError when the batch carries rows or a
// header but lacks a required source column. A batch with neither is an
// empty result and passes.
func (b RawBatch) Validate() error {
	if len(b.Rows) == 0 && len(b.Columns) == 0 {
		return nil
	}
	var missing []string
	for _, n := range RequiredSourceColumns {
		if !b.Columns[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Output: OutputSource, Missing: missing}
	}
	return nil
}

// CleanedRecord is a RawRecord with its derived calendar and line fields.
type CleanedRecord struct {
	Timestamp        time.Time
	RawTimestamp     string
	StationComplexID string
	StationComplex   string
	Latitude         float64
	Longitude        float64
	Borough          string
	Ridership        int

	Lines       []string
	DisplayName string
	Day         string
	Hour        int
	TimeBlock   string
	PrimaryLine string
	LineColor   string
}

// Raw returns the record as it was before cleaning.
func (c CleanedRecord) Raw() RawRecord {
	return RawRecord{
		Timestamp:        c.RawTimestamp,
		StationComplexID: c.StationComplexID,
		StationComplex:   c.StationComplex,
		Latitude:         c.Latitude,
		Longitude:        c.Longitude,
		Borough:          c.Borough,
		Ridership:        c.Ridership,
	}
}

// Date returns midnight of the record's calendar day.
func (c CleanedRecord) Date() time.Time {
	y, m, d := c.Timestamp.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Timestamp.Location())
}

// Records is the cleaned, read-only record set that every aggregation consumes.
type Records struct {
	Columns Columns
	Rows    []CleanedRecord
}

// Len returns the number of cleaned rows.
func (r Records) Len() int {
	return len(r.Rows)
}

// Columns is the set of source columns present in a dataset.
type Columns map[string]bool

// NewColumns builds a column set from header names.
func NewColumns(names ...string) Columns {
	cols := make(Columns, len(names))
	for _, n := range names {
		cols[n] = true
	}
	return cols
}

// Has reports whether every named column is present.
func (c Columns) Has(names ...string) bool {
	for _, n := range names {
		if !c[n] {
			return false
		}
	}
	return true
}

// Names returns the present columns in canonical order, followed by any extras sorted.
func (c Columns) Names() []string {
	out := make([]string, 0, len(c))
	var extra []string
	for _, n := range AllColumns {
		if c[n] {
			out = append(out, n)
		}
	}
	for n := range c {
		if !slices.Contains(AllColumns, n) {
			extra = append(extra, n)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

// require fails with a MissingColumnError when a needed column is absent.
// Records with neither rows nor columns, the empty dataset, never fail. A
// header that lacks the column fails even when cleaning dropped every row.
func (r Records) require(output string, names ...string) error {
	if len(r.Rows) == 0 && len(r.Columns) == 0 {
		return nil
	}
	var missing []string
	for _, n := range names {
		if !r.Columns[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Output: output, Missing: missing}
	}
	return nil
}
