package ridership

import (
	"slices"
	"strconv"
	"time"
)

// Output names, used in logs and MissingColumnError.
const (
	OutputHourly       = "hourly_ridership"
	OutputWeekly       = "weekly_ridership"
	OutputTimeBlock    = "time_block_ridership"
	OutputStationStats = "station_stats"
	OutputBoroughStats = "borough_stats"
	OutputLineStats    = "line_stats"
	OutputMetrics      = "metrics"
	OutputStationMap   = "station_map"
)

// Table is implemented by every derived table so it can be exported.
type Table interface {
	Header() []string
	Records() [][]string
}

// HourlyRow is one timestamp of the hourly trend, pivoted by borough.
type HourlyRow struct {
	Timestamp      time.Time      `json:"transit_timestamp"`
	Boroughs       map[string]int `json:"boroughs"`
	TotalRidership int            `json:"total_ridership"`
}

// HourlyTable holds one row per timestamp, ascending, and one column per borough.
type HourlyTable struct {
	Boroughs []string    `json:"boroughs"`
	Rows     []HourlyRow `json:"rows"`
}

// HourlyRidership sums ridership by timestamp and borough and pivots the
// boroughs into columns, adding a row-wise total.
func HourlyRidership(r Records) (HourlyTable, error) {
	if err := r.require(OutputHourly, ColTimestamp, ColBorough, ColRidership); err != nil {
		return HourlyTable{}, err
	}

	boroughs := distinct(r.Rows, func(c CleanedRecord) string { return c.Borough })
	byTime := map[time.Time]map[string]int{}
	for _, rec := range r.Rows {
		cell, ok := byTime[rec.Timestamp]
		if !ok {
			cell = make(map[string]int, len(boroughs))
			for _, b := range boroughs {
				cell[b] = 0
			}
			byTime[rec.Timestamp] = cell
		}
		cell[rec.Borough] += rec.Ridership
	}

	stamps := make([]time.Time, 0, len(byTime))
	for ts := range byTime {
		stamps = append(stamps, ts)
	}
	slices.SortFunc(stamps, func(a, b time.Time) int { return a.Compare(b) })

	table := HourlyTable{Boroughs: boroughs, Rows: make([]HourlyRow, 0, len(stamps))}
	for _, ts := range stamps {
		cell := byTime[ts]
		total := 0
		for _, v := range cell {
			total += v
		}
		table.Rows = append(table.Rows, HourlyRow{Timestamp: ts, Boroughs: cell, TotalRidership: total})
	}
	return table, nil
}

// Header implements Table.
func (t HourlyTable) Header() []string {
	h := []string{ColTimestamp}
	h = append(h, t.Boroughs...)
	return append(h, "total_ridership")
}

// Records implements Table.
func (t HourlyTable) Records() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := []string{row.Timestamp.Format("2006-01-02T15:04:05")}
		for _, b := range t.Boroughs {
			rec = append(rec, strconv.Itoa(row.Boroughs[b]))
		}
		out = append(out, append(rec, strconv.Itoa(row.TotalRidership)))
	}
	return out
}

// CategoryRow is a summed value for one (category, key) pair, such as
// ("Monday", "Queens") or ("06:00-09:00", "Times Sq-42 St").
type CategoryRow struct {
	Category  string `json:"category"`
	Key       string `json:"key"`
	Ridership int    `json:"ridership"`
}

// CategoryTable is a grouped sum completed over its full category domain.
type CategoryTable struct {
	CategoryColumn string        `json:"category_column"`
	KeyColumn      string        `json:"key_column"`
	Rows           []CategoryRow `json:"rows"`
}

// Header implements Table.
func (t CategoryTable) Header() []string {
	return []string{t.CategoryColumn, t.KeyColumn, ColRidership}
}

// Records implements Table.
func (t CategoryTable) Records() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, []string{row.Category, row.Key, strconv.Itoa(row.Ridership)})
	}
	return out
}

// Value returns the ridership for a pair, or false if the pair is absent.
func (t CategoryTable) Value(category, key string) (int, bool) {
	for _, row := range t.Rows {
		if row.Category == category && row.Key == key {
			return row.Ridership, true
		}
	}
	return 0, false
}

// WeeklyRidership sums ridership by day of week, once per borough and once
// per station, each completed against all seven days.
func WeeklyRidership(r Records) (byBorough, byStation CategoryTable, err error) {
	if err = r.require(OutputWeekly, ColTimestamp, ColBorough, ColStationComplex, ColRidership); err != nil {
		return CategoryTable{}, CategoryTable{}, err
	}
	day := func(c CleanedRecord) string { return c.Day }
	byBorough, err = categorySum(r.Rows, "day", "borough", Days, day, boroughOf)
	if err != nil {
		return CategoryTable{}, CategoryTable{}, err
	}
	byStation, err = categorySum(r.Rows, "day", "station", Days, day, stationOf)
	if err != nil {
		return CategoryTable{}, CategoryTable{}, err
	}
	return byBorough, byStation, nil
}

// TimeBlockRidership sums ridership by three-hour block, once per borough and
// once per station, each completed against all eight blocks.
func TimeBlockRidership(r Records) (byBorough, byStation CategoryTable, err error) {
	if err = r.require(OutputTimeBlock, ColTimestamp, ColBorough, ColStationComplex, ColRidership); err != nil {
		return CategoryTable{}, CategoryTable{}, err
	}
	block := func(c CleanedRecord) string { return c.TimeBlock }
	byBorough, err = categorySum(r.Rows, "time_block", "borough", TimeBlocks, block, boroughOf)
	if err != nil {
		return CategoryTable{}, CategoryTable{}, err
	}
	byStation, err = categorySum(r.Rows, "time_block", "station", TimeBlocks, block, stationOf)
	if err != nil {
		return CategoryTable{}, CategoryTable{}, err
	}
	return byBorough, byStation, nil
}

func boroughOf(c CleanedRecord) string { return c.Borough }
func stationOf(c CleanedRecord) string { return c.DisplayName }

func categorySum(rows []CleanedRecord, catCol, keyCol string, catDomain []string,
	catOf, keyOf func(CleanedRecord) string) (CategoryTable, error) {
	sums := map[[2]string]int{}
	var grouped []CategoryRow
	for _, rec := range rows {
		k := [2]string{catOf(rec), keyOf(rec)}
		if _, ok := sums[k]; !ok {
			grouped = append(grouped, CategoryRow{Category: k[0], Key: k[1]})
		}
		sums[k] += rec.Ridership
	}
	for i := range grouped {
		grouped[i].Ridership = sums[[2]string{grouped[i].Category, grouped[i].Key}]
	}

	keys := distinct(rows, keyOf)
	completed, err := Complete(grouped, [][]string{catDomain, keys},
		func(row CategoryRow) []string { return []string{row.Category, row.Key} },
		func(k []string) CategoryRow { return CategoryRow{Category: k[0], Key: k[1]} })
	if err != nil {
		return CategoryTable{}, err
	}
	if completed == nil {
		completed = []CategoryRow{}
	}
	return CategoryTable{CategoryColumn: catCol, KeyColumn: keyCol, Rows: completed}, nil
}

// distinct returns the sorted set of values of field across rows.
func distinct(rows []CleanedRecord, field func(CleanedRecord) string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, rec := range rows {
		v := field(rec)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}
