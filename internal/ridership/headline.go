package ridership

import (
	"encoding/json"
	"fmt"
)

// NamedTotal is a (name, total) pair. It encodes as a two-element JSON array
// so clients can read pair[0] and pair[1]; an empty name encodes as null.
type NamedTotal struct {
	Name  string
	Total int
}

// MarshalJSON implements json.Marshaler.
func (n NamedTotal) MarshalJSON() ([]byte, error) {
	var name any
	if n.Name != "" {
		name = n.Name
	}
	return json.Marshal([2]any{name, n.Total})
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NamedTotal) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("named total: want 2 elements, got %d", len(pair))
	}
	var name *string
	if err := json.Unmarshal(pair[0], &name); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[1], &n.Total); err != nil {
		return err
	}
	n.Name = ""
	if name != nil {
		n.Name = *name
	}
	return nil
}

// Metrics are the dashboard's headline numbers.
type Metrics struct {
	TotalRides     int        `json:"total_rides"`
	NumStations    int        `json:"num_stations"`
	NumLines       int        `json:"num_lines"`
	NumBoroughs    int        `json:"num_boroughs"`
	BusiestStation NamedTotal `json:"busiest_station"`
	BusiestLine    NamedTotal `json:"busiest_line"`
	BusiestBorough NamedTotal `json:"busiest_borough"`
}

// ComputeMetrics computes total rides, distinct counts and the busiest
// station, line and borough. Lines are exploded first, so a station serving
// several lines counts toward each of them. An empty record set yields zeros.
func ComputeMetrics(r Records) (Metrics, error) {
	if err := r.require(OutputMetrics, ColStationComplex, ColBorough, ColRidership); err != nil {
		return Metrics{}, err
	}

	stations := map[string]int{}
	lines := map[string]int{}
	boroughs := map[string]int{}
	var m Metrics
	for _, rec := range r.Rows {
		m.TotalRides += rec.Ridership
		stations[rec.DisplayName] += rec.Ridership
		boroughs[rec.Borough] += rec.Ridership
		for _, l := range ServingLines(rec) {
			lines[l] += rec.Ridership
		}
	}

	m.NumStations = len(stations)
	m.NumLines = len(lines)
	m.NumBoroughs = len(boroughs)
	m.BusiestStation = top(stations)
	m.BusiestLine = top(lines)
	m.BusiestBorough = top(boroughs)
	return m, nil
}

func top(sums map[string]int) NamedTotal {
	if len(sums) == 0 {
		return NamedTotal{}
	}
	lead := busiest(map[string]map[string]int{"": sums})[""]
	return NamedTotal{Name: lead.member, Total: lead.total}
}
