package utils

import (
	"slices"

	"github.com/tidwall/rtree"

	"ridership.subwaydash.org/internal/ridership"
)

// nearestCandidates is how many tree hits are re-ranked by true distance.
const nearestCandidates = 8

// StationHit is a station with its distance from a query point.
type StationHit struct {
	Station  ridership.StationMapRow `json:"station"`
	Distance float64                 `json:"distanceMeters"`
}

// StationIndex answers nearest and radius queries over station map rows.
// It is immutable after NewStationIndex and safe for concurrent reads.
type StationIndex struct {
	tree   rtree.RTreeG[ridership.StationMapRow]
	bounds CoordinateBounds
	size   int
}

// NewStationIndex indexes rows that carry coordinates. Rows at (0, 0) are skipped.
func NewStationIndex(rows []ridership.StationMapRow) *StationIndex {
	idx := &StationIndex{}
	for _, row := range rows {
		if row.Latitude == 0 && row.Longitude == 0 {
			continue
		}
		pt := [2]float64{row.Longitude, row.Latitude}
		idx.tree.Insert(pt, pt, row)
		idx.bounds = idx.bounds.Extend(row.Latitude, row.Longitude, idx.size == 0)
		idx.size++
	}
	return idx
}

// Len returns the number of indexed stations.
func (idx *StationIndex) Len() int { return idx.size }

// Bounds returns the box enclosing every indexed station.
func (idx *StationIndex) Bounds() CoordinateBounds { return idx.bounds }

// Nearest returns the station closest to the point.
func (idx *StationIndex) Nearest(lat, lon float64) (StationHit, bool) {
	if idx.size == 0 {
		return StationHit{}, false
	}
	pt := [2]float64{lon, lat}
	var hits []StationHit
	idx.tree.Nearby(
		rtree.BoxDist[float64, ridership.StationMapRow](pt, pt, nil),
		func(_, _ [2]float64, row ridership.StationMapRow, _ float64) bool {
			hits = append(hits, StationHit{Station: row, Distance: Distance(lat, lon, row.Latitude, row.Longitude)})
			return len(hits) < nearestCandidates
		},
	)
	sortHits(hits)
	return hits[0], true
}

// Within returns the stations no further than radius meters from the point, closest first.
func (idx *StationIndex) Within(lat, lon, radius float64) []StationHit {
	box := CalculateBounds(lat, lon, radius)
	if idx.size == 0 || IsOutOfBounds(box, idx.bounds) {
		return []StationHit{}
	}
	hits := []StationHit{}
	idx.tree.Search(
		[2]float64{box.MinLon, box.MinLat},
		[2]float64{box.MaxLon, box.MaxLat},
		func(_, _ [2]float64, row ridership.StationMapRow) bool {
			if d := Distance(lat, lon, row.Latitude, row.Longitude); d <= radius {
				hits = append(hits, StationHit{Station: row, Distance: d})
			}
			return true
		},
	)
	sortHits(hits)
	return hits
}

func sortHits(hits []StationHit) {
	slices.SortStableFunc(hits, func(a, b StationHit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		if a.Station.Station < b.Station.Station {
			return -1
		}
		if a.Station.Station > b.Station.Station {
			return 1
		}
		return 0
	})
}
