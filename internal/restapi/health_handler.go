package restapi

import (
	"encoding/json"
	"net/http"
	"time"

	"ridership.subwaydash.org/internal/logging"
	"ridership.subwaydash.org/internal/ridership"
)

// HealthResponse represents the JSON response from the health endpoint.
type HealthResponse struct {
	Status       string `json:"status"`
	Detail       string `json:"detail,omitempty"`
	Source       string `json:"source,omitempty"`
	Rows         int    `json:"rows"`
	LatestRecord string `json:"latestRecord,omitempty"`
}

func writeHealth(w http.ResponseWriter, code int, body HealthResponse) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// healthHandler reports readiness. It returns 503 until the first load has
// finished and whenever the optional SQLite source stops answering. Empty
// and stale datasets still serve traffic and report 200.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if api.Application == nil || api.Data == nil {
		writeHealth(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Detail: "dataset manager not initialized",
		})
		return
	}

	if !api.Data.IsReady() {
		writeHealth(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "starting",
			Detail: "ridership data is loading",
		})
		return
	}

	if api.DB != nil {
		if err := api.DB.PingContext(r.Context()); err != nil {
			logging.LogError(api.Logger, "ridership DB ping failed", err)
			writeHealth(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "unavailable",
				Detail: "database connection failed",
			})
			return
		}
	}

	ds := api.Data.Dataset()
	body := HealthResponse{Status: "ok", Source: ds.Source(), Rows: ds.Len()}
	latest, ok := ds.Latest()
	switch {
	case !ok:
		body.Status = "empty"
		if err := api.Data.LastError(); err != nil {
			body.Detail = err.Error()
		}
	case api.staleDetector.Check(latest, ok, api.clock().Now()):
		body.Status = "stale"
		body.Detail = "newest record is " + api.staleDetector.Age(latest, api.clock().Now()).Round(time.Second).String() + " old"
	}
	if ok {
		body.LatestRecord = latest.Format(ridership.WindowTimestampLayout)
	}
	writeHealth(w, http.StatusOK, body)
}
