package ridership

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Drop reasons reported by the cleaner.
const (
	DropMalformedTimestamp = "malformed_timestamp"
	DropNegativeRidership  = "negative_ridership"
	DropExcludedStation    = "excluded_station"
)

var timestampLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"01/02/2006 03:04:05 PM",
	"2006-01-02",
}

// ParseTimestamp parses a transit timestamp as wall-clock time in loc.
// Timestamps carrying an offset are converted to loc, so equal instants
// share one calendar hour whatever offset the source wrote.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if s != "" {
		for _, layout := range timestampLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t.In(loc), nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}

// CleanReport summarizes one cleaning pass.
type CleanReport struct {
	Input   int
	Kept    int
	Dropped map[string]int
}

// Cleaner derives calendar and line fields and removes rows that must not
// reach the aggregations. A Cleaner is safe for concurrent use.
type Cleaner struct {
	excluded []string
	location *time.Location
}

// CleanerOption customizes a Cleaner.
type CleanerOption func(*Cleaner)

// WithExcludedStations replaces the default exclusion list.
func WithExcludedStations(names []string) CleanerOption {
	return func(c *Cleaner) {
		c.excluded = slices.Clone(names)
	}
}

// WithLocation sets the zone timestamps are interpreted in. Defaults to UTC.
func WithLocation(loc *time.Location) CleanerOption {
	return func(c *Cleaner) {
		if loc != nil {
			c.location = loc
		}
	}
}

// NewCleaner returns a Cleaner using DefaultExcludedStations and UTC.
func NewCleaner(opts ...CleanerOption) *Cleaner {
	c := &Cleaner{
		excluded: slices.Clone(DefaultExcludedStations),
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean builds a new cleaned record set. The batch is read, never modified:
// every cleaned row owns its own line slice.
func (c *Cleaner) Clean(batch RawBatch) (Records, CleanReport) {
	report := CleanReport{Input: len(batch.Rows), Dropped: map[string]int{}}
	out := Records{
		Columns: make(Columns, len(batch.Columns)),
		Rows:    make([]CleanedRecord, 0, len(batch.Rows)),
	}
	for k, v := range batch.Columns {
		out.Columns[k] = v
	}

	for _, raw := range batch.Rows {
		rec, reason, ok := c.cleanRow(raw)
		if !ok {
			report.Dropped[reason]++
			continue
		}
		out.Rows = append(out.Rows, rec)
	}
	report.Kept = len(out.Rows)
	return out, report
}

func (c *Cleaner) cleanRow(raw RawRecord) (CleanedRecord, string, bool) {
	ts, err := ParseTimestamp(raw.Timestamp, c.location)
	if err != nil {
		return CleanedRecord{}, DropMalformedTimestamp, false
	}
	if raw.Ridership < 0 {
		return CleanedRecord{}, DropNegativeRidership, false
	}

	display := FormatDisplayName(raw.StationComplex)
	if slices.Contains(c.excluded, display) {
		return CleanedRecord{}, DropExcludedStation, false
	}

	lines := ResolveLines(raw.StationComplexID, raw.StationComplex)
	primary := ""
	if len(lines) > 0 {
		primary = lines[0]
	}

	return CleanedRecord{
		Timestamp:        ts,
		RawTimestamp:     raw.Timestamp,
		StationComplexID: raw.StationComplexID,
		StationComplex:   raw.StationComplex,
		Latitude:         raw.Latitude,
		Longitude:        raw.Longitude,
		Borough:          raw.Borough,
		Ridership:        raw.Ridership,
		Lines:            lines,
		DisplayName:      display,
		Day:              ts.Weekday().String(),
		Hour:             ts.Hour(),
		TimeBlock:        TimeBlockFor(ts.Hour()),
		PrimaryLine:      primary,
		LineColor:        LineColor(primary),
	}, "", true
}

// Clean runs a default Cleaner over batch.
func Clean(batch RawBatch) (Records, CleanReport) {
	return NewCleaner().Clean(batch)
}

// RawBatch returns the pre-cleaning form of the record set.
func (r Records) RawBatch() RawBatch {
	rows := make([]RawRecord, len(r.Rows))
	for i, rec := range r.Rows {
		rows[i] = rec.Raw()
	}
	cols := make(Columns, len(r.Columns))
	for k, v := range r.Columns {
		cols[k] = v
	}
	return RawBatch{Columns: cols, Rows: rows}
}
