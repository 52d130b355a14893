package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardHandler(t *testing.T) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/dashboard")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.StatusOK, model.Code)
	assert.Equal(t, testNow.UnixMilli(), model.CurrentTime)

	entry := entryOf(t, model)
	window := entry["window"].(map[string]any)
	assert.Equal(t, "2024-01-02T00:00:00Z", window["start"])
	assert.Equal(t, "2024-01-03T00:00:00Z", window["end"])
	assert.Equal(t, false, entry["empty"])

	for _, key := range []string{
		"hourly_ridership", "weekly_by_borough", "weekly_by_station",
		"time_block_by_borough", "time_block_by_station", "station_stats",
		"borough_stats", "line_stats", "metrics", "station_map",
	} {
		assert.Contains(t, entry, key)
	}
}

func TestHourlyHandler(t *testing.T) {
	api := createTestApi(t)

	t.Run("defaults to the latest day", func(t *testing.T) {
		_, model := serveApiAndRetrieveEndpoint(t, api, "/api/hourly")
		table := entryOf(t, model)["table"].(map[string]any)
		rows := table["rows"].([]any)
		require.Len(t, rows, 2)
		assert.Equal(t, 30.0, rows[0].(map[string]any)["total_ridership"])
		assert.Equal(t, 50.0, rows[1].(map[string]any)["total_ridership"])
		assert.Equal(t, []any{"Brooklyn", "Manhattan"}, table["boroughs"])
	})

	t.Run("start alone selects one day", func(t *testing.T) {
		_, model := serveApiAndRetrieveEndpoint(t, api, "/api/hourly?start=2024-01-01")
		rows := entryOf(t, model)["table"].(map[string]any)["rows"].([]any)
		require.Len(t, rows, 2)
		assert.Equal(t, 140.0, rows[0].(map[string]any)["total_ridership"])
		assert.Equal(t, 60.0, rows[1].(map[string]any)["total_ridership"])
	})

	t.Run("end date is inclusive", func(t *testing.T) {
		_, model := serveApiAndRetrieveEndpoint(t, api, "/api/hourly?start=2024-01-01&end=2024-01-02")
		rows := entryOf(t, model)["table"].(map[string]any)["rows"].([]any)
		assert.Len(t, rows, 4)
	})

	t.Run("end timestamp is exclusive", func(t *testing.T) {
		_, model := serveApiAndRetrieveEndpoint(t, api, "/api/hourly?start=2024-01-01&end=2024-01-02T09:00:00")
		rows := entryOf(t, model)["table"].(map[string]any)["rows"].([]any)
		assert.Len(t, rows, 3)
	})

	t.Run("window without records", func(t *testing.T) {
		_, model := serveApiAndRetrieveEndpoint(t, api, "/api/hourly?start=2024-03-01")
		entry := entryOf(t, model)
		assert.Equal(t, false, entry["empty"])
		assert.Empty(t, entry["table"].(map[string]any)["rows"])
	})
}

func TestWindowValidation(t *testing.T) {
	api := createTestApi(t)

	for _, endpoint := range []string{
		"/api/hourly?end=2024-01-02",
		"/api/hourly?start=yesterday",
		"/api/hourly?start=2024-01-01&end=soon",
		"/api/dashboard?start=2024-01-03&end=2024-01-01",
	} {
		t.Run(endpoint, func(t *testing.T) {
			resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, http.StatusBadRequest, model.Code)
			assert.NotEmpty(t, model.Text)
			assert.Nil(t, model.Data)
		})
	}
}

func TestWeeklyAndTimeBlockHandlers(t *testing.T) {
	api := createTestApi(t)

	t.Run("weekly by borough", func(t *testing.T) {
		_, model := serveApiAndRetrieveEndpoint(t, api, "/api/weekly")
		table := entryOf(t, model)["table"].(map[string]any)
		assert.Equal(t, "day", table["category_column"])
		assert.Equal(t, "borough", table["key_column"])
		assert.NotEmpty(t, table["rows"])
	})

	t.Run("weekly by station", func(t *testing.T) {
		_, model := serveApiAndRetrieveEndpoint(t, api, "/api/weekly?by=station")
		table := entryOf(t, model)["table"].(map[string]any)
		assert.NotEqual(t, "borough", table["key_column"])
	})

	t.Run("time blocks by station", func(t *testing.T) {
		_, model := serveApiAndRetrieveEndpoint(t, api, "/api/time-blocks?by=station")
		table := entryOf(t, model)["table"].(map[string]any)
		assert.NotEmpty(t, table["rows"])
	})

	t.Run("unknown grouping", func(t *testing.T) {
		resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/time-blocks?by=line")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, model.Text, "line")
	})
}

func TestKeyMetricsHandler(t *testing.T) {
	api := createTestApi(t)
	_, model := serveApiAndRetrieveEndpoint(t, api, "/api/metrics")

	entry := entryOf(t, model)
	assert.Equal(t, 280.0, entry["total_rides"])
	assert.Equal(t, 3.0, entry["num_stations"])
	assert.Equal(t, 3.0, entry["num_boroughs"])
	assert.Equal(t, []any{"Times Sq-42 St", 210.0}, entry["busiest_station"])
	assert.Equal(t, []any{"Manhattan", 210.0}, entry["busiest_borough"])
}

func TestGroupStatsHandlers(t *testing.T) {
	api := createTestApi(t)

	_, model := serveApiAndRetrieveEndpoint(t, api, "/api/boroughs")
	boroughs := listOf(t, model)
	require.Len(t, boroughs, 3)
	queens := findByKey(t, boroughs, "name", "Queens")
	assert.Equal(t, 40.0, queens["total_ridership"])
	assert.Equal(t, "Court Sq", queens["busiest_station"])

	_, model = serveApiAndRetrieveEndpoint(t, api, "/api/lines")
	lines := listOf(t, model)
	seven := findByKey(t, lines, "name", "7")
	assert.Equal(t, 40.0, seven["total_ridership"])
}

func TestDefaultDatesHandler(t *testing.T) {
	t.Run("latest day", func(t *testing.T) {
		_, model := serveApiAndRetrieveEndpoint(t, createTestApi(t), "/api/default-dates")
		entry := entryOf(t, model)
		assert.Equal(t, "2024-01-02T00:00:00", entry["startDate"])
		assert.Equal(t, "2024-01-03T00:00:00", entry["endDate"])
		assert.Equal(t, false, entry["empty"])
	})

	t.Run("empty dataset", func(t *testing.T) {
		api := createTestApiWithData(t, "transit_timestamp,station_complex,borough,ridership\n", nil)
		_, model := serveApiAndRetrieveEndpoint(t, api, "/api/default-dates")
		entry := entryOf(t, model)
		assert.Equal(t, true, entry["empty"])
		assert.Equal(t, "", entry["startDate"])
	})
}

func TestMissingCoordinatesOnlyAffectTheMap(t *testing.T) {
	body := "transit_timestamp,station_complex,borough,ridership\n" +
		"2024-01-01T08:00:00,Court Sq (7),Queens,40\n"
	api := createTestApiWithData(t, body, nil)

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entry := entryOf(t, model)
	assert.Contains(t, entry["unavailable"], "station_map")
	assert.EqualValues(t, 40, entry["metrics"].(map[string]any)["total_rides"])

	resp, _ = serveApiAndRetrieveEndpoint(t, api, "/api/stations")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, model = serveApiAndRetrieveEndpoint(t, api, "/api/map/stations")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, model.Text, "latitude")

	resp, _ = serveApiAndRetrieveEndpoint(t, api, "/api/export/station_map.csv")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestMissingCoreColumnsAreUnprocessable(t *testing.T) {
	body := "transit_timestamp,station_complex,latitude,longitude,ridership\n" +
		"2024-01-01T08:00:00,Court Sq (7),40.747,-73.946,40\n"
	api := createTestApiWithData(t, body, nil)

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/dashboard")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, model.Text, "borough")
}
