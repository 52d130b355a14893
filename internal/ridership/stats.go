package ridership

import (
	"cmp"
	"slices"
	"strconv"
	"time"
)

// Contribution is one summable (group, member) observation for GetBusiest.
type Contribution struct {
	Group  string
	Member string
	Value  int
}

// Busiest is the leading member of a group.
type Busiest struct {
	Group  string `json:"group"`
	Member string `json:"member"`
	Total  int    `json:"total"`
}

// GetBusiest sums contributions per (group, member) and, within each group,
// picks the member with the largest sum. Ties go to the member that sorts
// first. Results are ordered by group.
func GetBusiest(items []Contribution) []Busiest {
	sums := map[string]map[string]int{}
	for _, it := range items {
		addTo(sums, it.Group, it.Member, it.Value)
	}
	leaders := busiest(sums)
	out := make([]Busiest, 0, len(leaders))
	for _, g := range sortedKeys(leaders) {
		out = append(out, Busiest{Group: g, Member: leaders[g].member, Total: leaders[g].total})
	}
	return out
}

type leader[B cmp.Ordered] struct {
	member B
	total  int
}

func busiest[A, B cmp.Ordered](sums map[A]map[B]int) map[A]leader[B] {
	out := make(map[A]leader[B], len(sums))
	for group, members := range sums {
		var best leader[B]
		for i, m := range sortedKeys(members) {
			if i == 0 || members[m] > best.total {
				best = leader[B]{member: m, total: members[m]}
			}
		}
		out[group] = best
	}
	return out
}

func addTo[A, B comparable](sums map[A]map[B]int, a A, b B, v int) {
	inner, ok := sums[a]
	if !ok {
		inner = map[B]int{}
		sums[a] = inner
	}
	inner[b] += v
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// StationStatsRow summarizes one station.
type StationStatsRow struct {
	Station                 string  `json:"station"`
	TotalRidership          int     `json:"total_ridership"`
	AverageRidershipPerHour float64 `json:"average_ridership_per_hour"`
	PeakHour                string  `json:"peak_hour"`
	BusiestDay              string  `json:"busiest_day"`
	AverageRidershipPerDay  float64 `json:"average_ridership_per_day"`
	Lines                   string  `json:"lines"`
}

// StationStatsTable has one row per station, ordered by name.
type StationStatsTable struct {
	Rows []StationStatsRow `json:"rows"`
}

// Find returns the row for a station display name.
func (t StationStatsTable) Find(station string) (StationStatsRow, bool) {
	for _, row := range t.Rows {
		if row.Station == station {
			return row, true
		}
	}
	return StationStatsRow{}, false
}

// Header implements Table.
func (t StationStatsTable) Header() []string {
	return []string{
		"Station",
		"Total Ridership",
		"Average Ridership per Hour",
		"Peak Hour",
		"Busiest Day",
		"Average Ridership per Day",
		"Lines",
	}
}

// Records implements Table.
func (t StationStatsTable) Records() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, []string{
			row.Station,
			strconv.Itoa(row.TotalRidership),
			formatFloat(row.AverageRidershipPerHour),
			row.PeakHour,
			row.BusiestDay,
			formatFloat(row.AverageRidershipPerDay),
			row.Lines,
		})
	}
	return out
}

type stationAcc struct {
	total   int
	records int
	byDate  map[time.Time]int
	lines   map[string]bool
}

// StationStats computes per-station totals, averages, peak hour, busiest day
// and serving lines.
func StationStats(r Records) (StationStatsTable, error) {
	if err := r.require(OutputStationStats, ColTimestamp, ColStationComplex, ColRidership); err != nil {
		return StationStatsTable{}, err
	}

	accs := map[string]*stationAcc{}
	hours := map[string]map[int]int{}
	days := map[string]map[string]int{}
	for _, rec := range r.Rows {
		acc, ok := accs[rec.DisplayName]
		if !ok {
			acc = &stationAcc{byDate: map[time.Time]int{}, lines: map[string]bool{}}
			accs[rec.DisplayName] = acc
		}
		acc.total += rec.Ridership
		acc.records++
		acc.byDate[rec.Date()] += rec.Ridership
		for _, l := range rec.Lines {
			acc.lines[l] = true
		}
		addTo(hours, rec.DisplayName, rec.Hour, rec.Ridership)
		addTo(days, rec.DisplayName, rec.Day, rec.Ridership)
	}

	peakHours := busiest(hours)
	busiestDays := busiest(days)

	table := StationStatsTable{Rows: make([]StationStatsRow, 0, len(accs))}
	for _, name := range sortedKeys(accs) {
		acc := accs[name]
		table.Rows = append(table.Rows, StationStatsRow{
			Station:                 name,
			TotalRidership:          acc.total,
			AverageRidershipPerHour: float64(acc.total) / float64(acc.records),
			PeakHour:                FormatPeakHour(peakHours[name].member),
			BusiestDay:              busiestDays[name].member,
			AverageRidershipPerDay:  meanOf(acc.byDate),
			Lines:                   JoinLines(sortedKeys(acc.lines)),
		})
	}
	return table, nil
}

// GroupStatsRow summarizes one borough or line.
type GroupStatsRow struct {
	Name                       string  `json:"name"`
	TotalRidership             int     `json:"total_ridership"`
	StationCount               int     `json:"station_count"`
	AverageRidershipPerStation int     `json:"average_ridership_per_station"`
	AverageRidershipPerDay     float64 `json:"average_ridership_per_day"`
	BusiestStation             string  `json:"busiest_station"`
	BusiestStationRidership    int     `json:"busiest_station_ridership"`
}

// GroupStatsTable has one row per group value, ordered by name.
type GroupStatsTable struct {
	GroupColumn string          `json:"group_column"`
	Rows        []GroupStatsRow `json:"rows"`
}

// Header implements Table.
func (t GroupStatsTable) Header() []string {
	return []string{
		t.GroupColumn,
		"total_ridership",
		"station_count",
		"average_ridership_per_station",
		"average_ridership_per_day",
		"busiest_station",
		"busiest_station_ridership",
	}
}

// Records implements Table.
func (t GroupStatsTable) Records() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, []string{
			row.Name,
			strconv.Itoa(row.TotalRidership),
			strconv.Itoa(row.StationCount),
			strconv.Itoa(row.AverageRidershipPerStation),
			formatFloat(row.AverageRidershipPerDay),
			row.BusiestStation,
			strconv.Itoa(row.BusiestStationRidership),
		})
	}
	return out
}

// Find returns the row for a group name.
func (t GroupStatsTable) Find(name string) (GroupStatsRow, bool) {
	for _, row := range t.Rows {
		if row.Name == name {
			return row, true
		}
	}
	return GroupStatsRow{}, false
}

// BoroughStats computes per-borough totals, station counts, averages and the
// busiest station.
func BoroughStats(r Records) (GroupStatsTable, error) {
	if err := r.require(OutputBoroughStats, ColTimestamp, ColBorough, ColStationComplex, ColRidership); err != nil {
		return GroupStatsTable{}, err
	}
	return groupStats(ColBorough, r.Rows, func(c CleanedRecord) []string {
		return []string{c.Borough}
	}), nil
}

// LineStats explodes each record into one row per serving line, drops
// non-line labels, and computes the same statistics as BoroughStats per line.
func LineStats(r Records) (GroupStatsTable, error) {
	if err := r.require(OutputLineStats, ColTimestamp, ColStationComplex, ColRidership); err != nil {
		return GroupStatsTable{}, err
	}
	return groupStats("line", r.Rows, ServingLines), nil
}

// ServingLines returns the record's lines without the non-line labels.
func ServingLines(c CleanedRecord) []string {
	out := make([]string, 0, len(c.Lines))
	for _, l := range c.Lines {
		if !slices.Contains(NonLineLabels, l) {
			out = append(out, l)
		}
	}
	return out
}

func groupStats(column string, rows []CleanedRecord, groupsOf func(CleanedRecord) []string) GroupStatsTable {
	totals := map[string]int{}
	stations := map[string]map[string]int{}
	daily := map[string]map[time.Time]int{}
	for _, rec := range rows {
		for _, g := range groupsOf(rec) {
			totals[g] += rec.Ridership
			addTo(stations, g, rec.DisplayName, rec.Ridership)
			addTo(daily, g, rec.Date(), rec.Ridership)
		}
	}

	leaders := busiest(stations)
	table := GroupStatsTable{GroupColumn: column, Rows: make([]GroupStatsRow, 0, len(totals))}
	for _, g := range sortedKeys(totals) {
		count := len(stations[g])
		table.Rows = append(table.Rows, GroupStatsRow{
			Name:                       g,
			TotalRidership:             totals[g],
			StationCount:               count,
			AverageRidershipPerStation: totals[g] / count,
			AverageRidershipPerDay:     meanOf(daily[g]),
			BusiestStation:             leaders[g].member,
			BusiestStationRidership:    leaders[g].total,
		})
	}
	return table
}

func meanOf[K comparable](sums map[K]int) float64 {
	if len(sums) == 0 {
		return 0
	}
	total := 0
	for _, v := range sums {
		total += v
	}
	return float64(total) / float64(len(sums))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
