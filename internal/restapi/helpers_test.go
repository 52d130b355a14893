package restapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ridership.subwaydash.org/internal/app"
	"ridership.subwaydash.org/internal/appconf"
	"ridership.subwaydash.org/internal/clock"
	"ridership.subwaydash.org/internal/data"
	"ridership.subwaydash.org/internal/models"
	"ridership.subwaydash.org/internal/pipeline"
	"ridership.subwaydash.org/internal/source"
)

// testRidershipCSV covers three stations in three boroughs over two days.
// Times Sq-42 St totals 210 of 280 rides; the latest record is 2024-01-02 09:00.
const testRidershipCSV = `transit_timestamp,station_complex_id,station_complex,latitude,longitude,borough,ridership
2024-01-01T08:00:00.000,611,"Times Sq-42 St (1,2,3)",40.7575,-73.9858,Manhattan,100
2024-01-01T17:00:00.000,611,"Times Sq-42 St (1,2,3)",40.7575,-73.9858,Manhattan,60
2024-01-02T09:00:00.000,611,"Times Sq-42 St (1,2,3)",40.7575,-73.9858,Manhattan,50
2024-01-01T08:00:00.000,447,Court Sq (7),40.747,-73.946,Queens,40
2024-01-02T08:00:00.000,58,"Coney Island-Stillwell Av (D,F,N,Q)",40.5773,-73.9812,Brooklyn,30
`

var testNow = time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

func writeTestCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ridership.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// newTestApplication loads body through the CSV source. A nil clock is
// pinned to testNow.
func newTestApplication(t *testing.T, body string, c clock.Clock) *app.Application {
	t.Helper()
	if c == nil {
		c = clock.NewMockClock(testNow)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := appconf.Default()
	cfg.Env = appconf.Test

	chain := source.NewChain(logger, nil, source.CSVFile{Path: writeTestCSV(t, body)})
	manager := data.NewManager(chain, nil, data.WithClock(c), data.WithLogger(logger))
	require.NoError(t, manager.Load(context.Background()))
	t.Cleanup(manager.Shutdown)

	return &app.Application{
		Config: cfg,
		Logger: logger,
		Data:   manager,
		Runner: pipeline.NewRunner(pipeline.WithLogger(logger)),
		Clock:  c,
	}
}

func createTestApiWithData(t *testing.T, body string, c clock.Clock) *RestAPI {
	t.Helper()
	api := NewRestAPI(newTestApplication(t, body, c))
	t.Cleanup(api.Shutdown)
	return api
}

func createTestApiWithClock(t *testing.T, c clock.Clock) *RestAPI {
	return createTestApiWithData(t, testRidershipCSV, c)
}

func createTestApi(t *testing.T) *RestAPI {
	return createTestApiWithClock(t, clock.NewMockClock(testNow))
}

func serveApi(t *testing.T, api *RestAPI, endpoint string) *http.Response {
	t.Helper()
	mux := http.NewServeMux()
	api.SetRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()
	resp := serveApi(t, api, endpoint)
	var model models.ResponseModel
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&model))
	return resp, model
}

// entryOf returns data.entry of a decoded envelope.
func entryOf(t *testing.T, model models.ResponseModel) map[string]any {
	t.Helper()
	data, ok := model.Data.(map[string]any)
	require.True(t, ok, "data is %T", model.Data)
	entry, ok := data["entry"].(map[string]any)
	require.True(t, ok, "entry is %T", data["entry"])
	return entry
}

// listOf returns data.list of a decoded envelope.
func listOf(t *testing.T, model models.ResponseModel) []any {
	t.Helper()
	data, ok := model.Data.(map[string]any)
	require.True(t, ok, "data is %T", model.Data)
	list, ok := data["list"].([]any)
	require.True(t, ok, "list is %T", data["list"])
	return list
}

// findByKey returns the first object in list whose key equals value.
func findByKey(t *testing.T, list []any, key, value string) map[string]any {
	t.Helper()
	for _, item := range list {
		obj, ok := item.(map[string]any)
		require.True(t, ok)
		if obj[key] == value {
			return obj
		}
	}
	t.Fatalf("no item with %s=%q", key, value)
	return nil
}
