package ridership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	layouts := []string{
		"2024-01-01T08:00:00.000",
		"2024-01-01T08:00:00",
		"2024-01-01T08:00:00Z",
		"2024-01-01 08:00:00",
		"01/01/2024 08:00:00 AM",
	}
	for _, s := range layouts {
		t.Run(s, func(t *testing.T) {
			got, err := ParseTimestamp(s, time.UTC)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseTimestamp("not a time", time.UTC)
	assert.ErrorIs(t, err, ErrMalformedTimestamp)

	_, err = ParseTimestamp("", time.UTC)
	assert.ErrorIs(t, err, ErrMalformedTimestamp)
}

func TestClean_DerivedFields(t *testing.T) {
	recs := cleaned(t, raw("2024-01-03T13:00:00", "Times Sq-42 St (7,1,S,2,3)", "Manhattan", 42))
	require.Len(t, recs.Rows, 1)
	rec := recs.Rows[0]

	assert.Equal(t, "Times Sq-42 St", rec.DisplayName)
	assert.Equal(t, []string{"1", "2", "3", "7", "S"}, rec.Lines)
	assert.Equal(t, "Wednesday", rec.Day)
	assert.Equal(t, 13, rec.Hour)
	assert.Equal(t, "12:00-15:00", rec.TimeBlock)
	assert.Equal(t, "1", rec.PrimaryLine)
	assert.Equal(t, "#EE352E", rec.LineColor)
	assert.Equal(t, 42, rec.Ridership)
}

func TestClean_LineColorFallback(t *testing.T) {
	recs := cleaned(t,
		raw("2024-01-03T13:00:00", "Rockefeller Ctr", "Manhattan", 1),
		raw("2024-01-03T13:00:00", "St George (SIR)", "Staten Island", 1),
		raw("2024-01-03T13:00:00", "Bedford Av (L)", "Brooklyn", 1),
	)
	assert.Equal(t, "", recs.Rows[0].PrimaryLine)
	assert.Equal(t, DefaultLineColor, recs.Rows[0].LineColor)
	assert.Equal(t, "SIR", recs.Rows[1].PrimaryLine)
	assert.Equal(t, DefaultLineColor, recs.Rows[1].LineColor)
	assert.Equal(t, "#A7A9AC", recs.Rows[2].LineColor)
}

func TestClean_DropsBadRowsAndContinues(t *testing.T) {
	batch := batchOf(
		raw("garbage", "A (1)", "Manhattan", 1),
		raw("2024-01-01T00:00:00", "Aqueduct Racetrack (A)", "Queens", 9),
		raw("2024-01-01T01:00:00", "B (2)", "Bronx", -3),
		raw("2024-01-01T02:00:00", "C (3)", "Brooklyn", 7),
	)

	recs, report := Clean(batch)

	require.Len(t, recs.Rows, 1)
	assert.Equal(t, "C", recs.Rows[0].DisplayName)
	assert.Equal(t, 4, report.Input)
	assert.Equal(t, 1, report.Kept)
	assert.Equal(t, map[string]int{
		DropMalformedTimestamp: 1,
		DropExcludedStation:    1,
		DropNegativeRidership:  1,
	}, report.Dropped)
}

func TestClean_CustomExclusions(t *testing.T) {
	c := NewCleaner(WithExcludedStations([]string{"C"}))
	recs, report := c.Clean(batchOf(
		raw("2024-01-01T02:00:00", "C (3)", "Brooklyn", 7),
		raw("2024-01-01T02:00:00", "Aqueduct Racetrack (A)", "Queens", 9),
	))
	require.Len(t, recs.Rows, 1)
	assert.Equal(t, "Aqueduct Racetrack", recs.Rows[0].DisplayName)
	assert.Equal(t, 1, report.Dropped[DropExcludedStation])
}

func TestClean_DoesNotMutateInput(t *testing.T) {
	batch := batchOf(
		raw("2024-01-01T08:00:00", "A (2,1)", "Manhattan", 10),
		raw("bad", "B (7)", "Queens", 20),
	)
	before := make([]RawRecord, len(batch.Rows))
	copy(before, batch.Rows)
	cols := len(batch.Columns)

	recs, _ := Clean(batch)
	recs.Rows[0].Lines[0] = "X"
	recs.Columns["extra"] = true

	assert.Equal(t, before, batch.Rows)
	assert.Len(t, batch.Columns, cols)
}

func TestClean_Idempotent(t *testing.T) {
	first := scenarioRecords(t)
	second, report := Clean(first.RawBatch())

	assert.Equal(t, first.Len(), report.Kept)
	assert.Equal(t, first, second)
}

func TestClean_EmptyBatch(t *testing.T) {
	recs, report := Clean(RawBatch{})
	assert.Equal(t, 0, recs.Len())
	assert.NotNil(t, recs.Rows)
	assert.Equal(t, 0, report.Input)
	assert.Empty(t, report.Dropped)
}

func TestClean_WithLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tz database not available")
	}
	recs, _ := NewCleaner(WithLocation(ny)).Clean(batchOf(raw("2024-07-01T23:00:00", "A (1)", "Manhattan", 1)))
	require.Len(t, recs.Rows, 1)
	assert.Equal(t, ny, recs.Rows[0].Timestamp.Location())
	assert.Equal(t, 23, recs.Rows[0].Hour)
	assert.Equal(t, "21:00-24:00", recs.Rows[0].TimeBlock)
}

func TestParseTimestamp_ConvertsOffsetsToLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tz database not available")
	}

	utc, err := ParseTimestamp("2024-07-01T12:00:00Z", ny)
	require.NoError(t, err)
	assert.Equal(t, ny, utc.Location())
	assert.Equal(t, 8, utc.Hour())

	offset, err := ParseTimestamp("2024-07-01T08:00:00-04:00", ny)
	require.NoError(t, err)
	assert.Equal(t, utc, offset, "equal instants are the same value")

	recs, _ := NewCleaner(WithLocation(ny)).Clean(batchOf(
		raw("2024-07-01T12:00:00Z", "A (1)", "Manhattan", 1),
		raw("2024-07-01T08:00:00-04:00", "A (1)", "Manhattan", 2),
		raw("2024-07-01T08:00:00", "A (1)", "Manhattan", 4),
	))
	require.Len(t, recs.Rows, 3)
	for _, r := range recs.Rows {
		assert.Equal(t, 8, r.Hour)
	}
	hourly, err := HourlyRidership(recs)
	require.NoError(t, err)
	require.Len(t, hourly.Rows, 1)
	assert.Equal(t, 7, hourly.Rows[0].TotalRidership)
}
