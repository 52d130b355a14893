package ridership

import (
	"slices"
	"strconv"
	"strings"
)

// StationMapRow places one station complex on the map.
type StationMapRow struct {
	ComplexID      string   `json:"station_complex_id"`
	Station        string   `json:"station"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Borough        string   `json:"borough"`
	Lines          []string `json:"lines"`
	LineColor      string   `json:"line_color"`
	TotalRidership int      `json:"total_ridership"`
}

// StationMapTable has one row per complex, ordered by station name then id.
type StationMapTable struct {
	Rows []StationMapRow `json:"rows"`
}

// Header implements Table.
func (t StationMapTable) Header() []string {
	return []string{ColStationComplexID, "station", ColLatitude, ColLongitude, ColBorough, "lines", "line_color", "total_ridership"}
}

// Records implements Table.
func (t StationMapTable) Records() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, []string{
			row.ComplexID,
			row.Station,
			strconv.FormatFloat(row.Latitude, 'f', 6, 64),
			strconv.FormatFloat(row.Longitude, 'f', 6, 64),
			row.Borough,
			JoinLines(row.Lines),
			row.LineColor,
			strconv.Itoa(row.TotalRidership),
		})
	}
	return out
}

// StationMap builds the map layer: one point per station complex carrying
// its first reported coordinates and total ridership.
func StationMap(r Records) (StationMapTable, error) {
	if err := r.require(OutputStationMap, ColStationComplex, ColLatitude, ColLongitude, ColRidership); err != nil {
		return StationMapTable{}, err
	}

	byID := map[string]*StationMapRow{}
	for _, rec := range r.Rows {
		id := rec.StationComplexID
		if id == "" {
			id = rec.DisplayName
		}
		row, ok := byID[id]
		if !ok {
			row = &StationMapRow{
				ComplexID: id,
				Station:   rec.DisplayName,
				Latitude:  rec.Latitude,
				Longitude: rec.Longitude,
				Borough:   rec.Borough,
				Lines:     slices.Clone(rec.Lines),
				LineColor: rec.LineColor,
			}
			byID[id] = row
		}
		row.TotalRidership += rec.Ridership
	}

	table := StationMapTable{Rows: make([]StationMapRow, 0, len(byID))}
	for _, row := range byID {
		table.Rows = append(table.Rows, *row)
	}
	slices.SortFunc(table.Rows, func(a, b StationMapRow) int {
		if c := strings.Compare(a.Station, b.Station); c != 0 {
			return c
		}
		return strings.Compare(a.ComplexID, b.ComplexID)
	})
	return table, nil
}
