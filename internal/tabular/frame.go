// Package tabular moves ridership rows in and out of gota data frames: source
// bodies are parsed into frames and shaped into raw batches, and derived
// tables are written back out as CSV.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"ridership.subwaydash.org/internal/ridership"
)

// ConvertReport counts rows the frame conversion could not shape into records.
type ConvertReport struct {
	Rows    int
	Skipped int
}

// jsonNull is how a frame built from JSON objects spells a null cell.
const jsonNull = "<nil>"

var utf8BOM = []byte("\uFEFF")

// stringOpts loads every cell as text. No cell is treated as missing, so a
// station literally named "NA" survives.
var stringOpts = []dataframe.LoadOption{
	dataframe.DetectTypes(false),
	dataframe.DefaultType(series.String),
	dataframe.NaNValues([]string{}),
}

// ReadCSV parses a CSV body with a header row. A body holding only the header
// yields an empty batch that still reports the header's columns.
func ReadCSV(r io.Reader) (ridership.RawBatch, ConvertReport, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return ridership.RawBatch{}, ConvertReport{}, fmt.Errorf("read csv: %w", err)
	}
	body = bytes.TrimPrefix(body, utf8BOM)
	header, rest, err := splitHeader(body)
	if err != nil {
		return ridership.RawBatch{}, ConvertReport{}, err
	}
	if len(bytes.TrimSpace(rest)) == 0 {
		return emptyBatch(header), ConvertReport{}, nil
	}

	df := dataframe.ReadCSV(bytes.NewReader(body), stringOpts...)
	if df.Err != nil {
		return ridership.RawBatch{}, ConvertReport{}, fmt.Errorf("parse csv: %w", df.Err)
	}
	batch, report := FrameToBatch(df)
	return batch, report, nil
}

// ReadJSON parses a JSON array of row objects, the shape tabular-data
// endpoints return.
func ReadJSON(r io.Reader) (ridership.RawBatch, ConvertReport, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return ridership.RawBatch{}, ConvertReport{}, fmt.Errorf("read json: %w", err)
	}
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(body, utf8BOM))
	if bytes.Equal(trimmed, []byte("[]")) {
		return emptyBatch(nil), ConvertReport{}, nil
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return ridership.RawBatch{}, ConvertReport{}, fmt.Errorf("parse json: expected an array of rows")
	}

	df := dataframe.ReadJSON(bytes.NewReader(trimmed), stringOpts...)
	if df.Err != nil {
		return ridership.RawBatch{}, ConvertReport{}, fmt.Errorf("parse json: %w", df.Err)
	}
	batch, report := FrameToBatch(df)
	return batch, report, nil
}

// FromRecords shapes a header-first record grid, such as rows scanned from a
// database, into a raw batch.
func FromRecords(records [][]string) (ridership.RawBatch, ConvertReport, error) {
	if len(records) == 0 {
		return ridership.RawBatch{}, ConvertReport{}, fmt.Errorf("load records: missing header row")
	}
	if len(records) == 1 {
		return emptyBatch(records[0]), ConvertReport{}, nil
	}
	df := dataframe.LoadRecords(records, stringOpts...)
	if df.Err != nil {
		return ridership.RawBatch{}, ConvertReport{}, fmt.Errorf("load records: %w", df.Err)
	}
	batch, report := FrameToBatch(df)
	return batch, report, nil
}

// FrameToBatch shapes a frame into raw records. Only the known source columns
// are read, matched after trimming spaces and a byte order mark; absent
// columns leave their fields zero and are missing from the batch's column
// set. Rows whose numeric fields do not parse are skipped.
func FrameToBatch(df dataframe.DataFrame) (ridership.RawBatch, ConvertReport) {
	present := ridership.NewColumns()
	cols := map[string][]string{}
	for _, raw := range df.Names() {
		name := headerName(raw)
		if !isSourceColumn(name) {
			continue
		}
		present[name] = true
		cols[name] = values(df.Col(raw))
	}

	n := df.Nrow()
	report := ConvertReport{Rows: n}
	batch := ridership.RawBatch{Columns: present, Rows: make([]ridership.RawRecord, 0, n)}
	cell := func(col string, i int) string {
		if v, ok := cols[col]; ok {
			return v[i]
		}
		return ""
	}

	for i := 0; i < n; i++ {
		lat, okLat := parseFloat(cell(ridership.ColLatitude, i))
		lon, okLon := parseFloat(cell(ridership.ColLongitude, i))
		rides, okRides := parseCount(cell(ridership.ColRidership, i))
		if !okLat || !okLon || !okRides {
			report.Skipped++
			continue
		}
		batch.Rows = append(batch.Rows, ridership.RawRecord{
			Timestamp:        cell(ridership.ColTimestamp, i),
			StationComplexID: cell(ridership.ColStationComplexID, i),
			StationComplex:   cell(ridership.ColStationComplex, i),
			Latitude:         lat,
			Longitude:        lon,
			Borough:          cell(ridership.ColBorough, i),
			Ridership:        rides,
		})
	}
	return batch, report
}

// values returns the column as strings with JSON nulls mapped to "".
func values(s series.Series) []string {
	out := s.Records()
	for i, v := range out {
		if v == jsonNull {
			out[i] = ""
		}
	}
	return out
}

func headerName(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
}

func isSourceColumn(name string) bool {
	for _, c := range ridership.AllColumns {
		if c == name {
			return true
		}
	}
	return false
}

// parseFloat accepts an empty cell as zero.
func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseCount reads a ridership count, which some exports write as "12.0".
func parseCount(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, ok := parseFloat(s)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}

func splitHeader(body []byte) ([]string, []byte, error) {
	nl := bytes.IndexByte(body, '\n')
	line, rest := body, []byte(nil)
	if nl >= 0 {
		line, rest = body[:nl], body[nl+1:]
	}
	if len(bytes.TrimSpace(line)) == 0 {
		return nil, nil, fmt.Errorf("parse csv: missing header row")
	}
	header, err := csv.NewReader(bytes.NewReader(line)).Read()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv header: %w", err)
	}
	return header, rest, nil
}

func emptyBatch(header []string) ridership.RawBatch {
	cols := ridership.NewColumns()
	for _, h := range header {
		h = headerName(h)
		if isSourceColumn(h) {
			cols[h] = true
		}
	}
	return ridership.RawBatch{Columns: cols, Rows: []ridership.RawRecord{}}
}
