package ridership

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func raw(ts, station, borough string, ridership int) RawRecord {
	return RawRecord{
		Timestamp:        ts,
		StationComplexID: station,
		StationComplex:   station,
		Latitude:         40.75,
		Longitude:        -73.98,
		Borough:          borough,
		Ridership:        ridership,
	}
}

func batchOf(rows ...RawRecord) RawBatch {
	return RawBatch{Columns: NewColumns(AllColumns...), Rows: rows}
}

func cleaned(t *testing.T, rows ...RawRecord) Records {
	t.Helper()
	recs, report := Clean(batchOf(rows...))
	require.Equal(t, len(rows), report.Kept, "fixture rows should all survive cleaning: %v", report.Dropped)
	return recs
}

// scenarioRecords is the three-row dataset used across the aggregation tests.
func scenarioRecords(t *testing.T) Records {
	return cleaned(t,
		raw("2024-01-01T08:00:00", "A (1,2)", "Manhattan", 10),
		raw("2024-01-01T08:00:00", "A (1,2)", "Manhattan", 5),
		raw("2024-01-02T08:00:00", "B (7)", "Queens", 20),
	)
}
