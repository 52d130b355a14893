package tabular

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridership.subwaydash.org/internal/ridership"
)

const sampleCSV = `transit_timestamp,station_complex_id,station_complex,latitude,longitude,borough,ridership,transit_mode
2024-01-01T08:00:00.000,611,Times Sq-42 St (N;Q;R;W;S;1;2;3;7),40.7575,-73.9858,Manhattan,120,subway
2024-01-01T08:00:00.000,TRAM1,RIT-Manhattan (R042),40.761,-73.964,Manhattan,7.0,tram
2024-01-01T09:00:00.000,447,"Court Sq (E,M,7,G)",40.747,-73.946,Queens,,subway
2024-01-01T09:00:00.000,1,Broken,not-a-number,-73.9,Bronx,5,subway
`

func TestReadCSV(t *testing.T) {
	batch, report, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 4, report.Rows)
	assert.Equal(t, 1, report.Skipped)
	assert.True(t, batch.Columns.Has(ridership.AllColumns...))
	assert.False(t, batch.Columns["transit_mode"])
	require.Len(t, batch.Rows, 3)

	assert.Equal(t, ridership.RawRecord{
		Timestamp:        "2024-01-01T08:00:00.000",
		StationComplexID: "611",
		StationComplex:   "Times Sq-42 St (N;Q;R;W;S;1;2;3;7)",
		Latitude:         40.7575,
		Longitude:        -73.9858,
		Borough:          "Manhattan",
		Ridership:        120,
	}, batch.Rows[0])
	assert.Equal(t, 7, batch.Rows[1].Ridership)
	assert.Equal(t, "Court Sq (E,M,7,G)", batch.Rows[2].StationComplex)
	assert.Equal(t, 0, batch.Rows[2].Ridership)
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	batch, report, err := ReadCSV(strings.NewReader("transit_timestamp,borough,ridership\n"))
	require.NoError(t, err)
	assert.Empty(t, batch.Rows)
	assert.Zero(t, report.Rows)
	assert.Equal(t, []string{ridership.ColTimestamp, ridership.ColBorough, ridership.ColRidership}, batch.Columns.Names())
}

func TestReadCSV_MissingColumns(t *testing.T) {
	batch, _, err := ReadCSV(strings.NewReader("transit_timestamp,station_complex,ridership\n2024-01-01T08:00:00,A (1),3\n"))
	require.NoError(t, err)
	require.Len(t, batch.Rows, 1)
	assert.False(t, batch.Columns.Has(ridership.ColBorough))
	assert.Equal(t, "", batch.Rows[0].Borough)
}

func TestReadCSV_ByteOrderMarkAndPaddedHeader(t *testing.T) {
	body := "\uFEFFtransit_timestamp, station_complex ,ridership\n2024-01-01T08:00:00,A (1),3\n"
	batch, _, err := ReadCSV(strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, []string{ridership.ColTimestamp, ridership.ColStationComplex, ridership.ColRidership}, batch.Columns.Names())
	require.Len(t, batch.Rows, 1)
	assert.Equal(t, "2024-01-01T08:00:00", batch.Rows[0].Timestamp)
	assert.Equal(t, "A (1)", batch.Rows[0].StationComplex)
	assert.NoError(t, batch.Validate())

	header, _, err := ReadCSV(strings.NewReader("\uFEFFtransit_timestamp,station_complex,ridership\n"))
	require.NoError(t, err)
	assert.NoError(t, header.Validate())
}

func TestReadCSV_WithoutTimestampColumn(t *testing.T) {
	batch, _, err := ReadCSV(strings.NewReader("station_complex,borough,ridership\nA (1),Bronx,3\nB (2),Bronx,4\n"))
	require.NoError(t, err)
	require.Len(t, batch.Rows, 2)

	var mce *ridership.MissingColumnError
	require.ErrorAs(t, batch.Validate(), &mce)
	assert.Equal(t, []string{ridership.ColTimestamp}, mce.Missing)
}

func TestReadCSV_KeepsLiteralNACells(t *testing.T) {
	batch, _, err := ReadCSV(strings.NewReader("transit_timestamp,station_complex,borough,ridership\n2024-01-01T08:00:00,NA,NaN,3\n"))
	require.NoError(t, err)
	require.Len(t, batch.Rows, 1)
	assert.Equal(t, "NA", batch.Rows[0].StationComplex)
	assert.Equal(t, "NaN", batch.Rows[0].Borough)
}

func TestReadCSV_Empty(t *testing.T) {
	_, _, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestReadJSON(t *testing.T) {
	body := `[
		{"transit_timestamp": "2024-01-01T08:00:00.000", "station_complex_id": "611",
		 "station_complex": "Times Sq-42 St (1,2,3)", "latitude": "40.7575", "longitude": "-73.9858",
		 "borough": "Manhattan", "ridership": "12"},
		{"transit_timestamp": "2024-01-01T09:00:00.000", "station_complex_id": "447",
		 "station_complex": "Court Sq (7)", "latitude": "40.747", "longitude": "-73.946",
		 "borough": "Queens", "ridership": 3}
	]`
	batch, report, err := ReadJSON(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Rows)
	require.Len(t, batch.Rows, 2)
	assert.True(t, batch.Columns.Has(ridership.AllColumns...))

	byID := map[string]ridership.RawRecord{}
	for _, r := range batch.Rows {
		byID[r.StationComplexID] = r
	}
	assert.Equal(t, 12, byID["611"].Ridership)
	assert.Equal(t, 3, byID["447"].Ridership)
	assert.InDelta(t, 40.747, byID["447"].Latitude, 1e-9)
}

func TestReadJSON_EmptyArrayAndGarbage(t *testing.T) {
	batch, _, err := ReadJSON(strings.NewReader(" [] "))
	require.NoError(t, err)
	assert.Empty(t, batch.Rows)

	_, _, err = ReadJSON(strings.NewReader(`{"error": true}`))
	assert.Error(t, err)
}

func TestReadJSON_NullCellsAreEmpty(t *testing.T) {
	body := `[{"transit_timestamp": "2024-01-01T08:00:00", "station_complex": "NA", "borough": null, "ridership": 2}]`
	batch, _, err := ReadJSON(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, batch.Rows, 1)
	assert.Equal(t, "NA", batch.Rows[0].StationComplex)
	assert.Equal(t, "", batch.Rows[0].Borough)
}

func TestFromRecords(t *testing.T) {
	batch, report, err := FromRecords([][]string{
		{"station_complex", "ridership"},
		{"A (1)", "4"},
		{"B (2)", "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, batch.Rows, 1)
	assert.Equal(t, 4, batch.Rows[0].Ridership)

	batch, _, err = FromRecords([][]string{{"ridership"}})
	require.NoError(t, err)
	assert.Empty(t, batch.Rows)
	assert.True(t, batch.Columns.Has(ridership.ColRidership))

	_, _, err = FromRecords(nil)
	assert.Error(t, err)
}

func scenarioStats(t *testing.T) ridership.StationStatsTable {
	t.Helper()
	recs, _ := ridership.Clean(ridership.RawBatch{
		Columns: ridership.NewColumns(ridership.AllColumns...),
		Rows: []ridership.RawRecord{
			{Timestamp: "2024-01-01T08:00:00", StationComplex: "A (1,2)", Borough: "Manhattan", Ridership: 10},
			{Timestamp: "2024-01-01T08:00:00", StationComplex: "A (1,2)", Borough: "Manhattan", Ridership: 5},
		},
	})
	stats, err := ridership.StationStats(recs)
	require.NoError(t, err)
	return stats
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, scenarioStats(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Station,Total Ridership,Average Ridership per Hour,Peak Hour,Busiest Day,Average Ridership per Day,Lines", lines[0])
	assert.Equal(t, `A,15,7.50,8:00 AM,Monday,15.00,"1, 2"`, lines[1])
}

func TestWriteCSV_EmptyTableWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ridership.StationStatsTable{}))
	assert.Equal(t, "Station,Total Ridership,Average Ridership per Hour,Peak Hour,Busiest Day,Average Ridership per Day,Lines\n", buf.String())
}

func TestWriteCSVFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteCSVFile(dir, ridership.OutputStationStats, scenarioStats(t)))

	data, err := os.ReadFile(filepath.Join(dir, "station_stats.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total Ridership")

	assert.Error(t, WriteCSVFile(filepath.Join(dir, "missing"), "x", scenarioStats(t)))
}
