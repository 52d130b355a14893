package restapi

import (
	"fmt"
	"net/http"

	"ridership.subwaydash.org/internal/models"
	"ridership.subwaydash.org/internal/ridership"
)

// windowedTable is a table together with the window its run used.
type windowedTable struct {
	Window ridership.Window `json:"window"`
	Empty  bool             `json:"empty"`
	Table  any              `json:"table"`
}

// dashboardHandler returns every derived output in one response.
func (api *RestAPI) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	res, _, ok := api.result(w, r)
	if !ok {
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(res, api.clock()))
}

func (api *RestAPI) hourlyHandler(w http.ResponseWriter, r *http.Request) {
	res, _, ok := api.result(w, r)
	if !ok {
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(windowedTable{res.Window, res.Empty, res.Hourly}, api.clock()))
}

// groupedBy picks the borough or station variant of a category output.
func groupedBy(r *http.Request, byBorough, byStation ridership.CategoryTable) (ridership.CategoryTable, error) {
	switch by := r.URL.Query().Get("by"); by {
	case "", "borough":
		return byBorough, nil
	case "station":
		return byStation, nil
	default:
		return ridership.CategoryTable{}, fmt.Errorf("invalid by %q: expected borough or station", by)
	}
}

func (api *RestAPI) weeklyHandler(w http.ResponseWriter, r *http.Request) {
	res, _, ok := api.result(w, r)
	if !ok {
		return
	}
	table, err := groupedBy(r, res.WeeklyByBorough, res.WeeklyByStation)
	if err != nil {
		api.badRequestResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(windowedTable{res.Window, res.Empty, table}, api.clock()))
}

func (api *RestAPI) timeBlocksHandler(w http.ResponseWriter, r *http.Request) {
	res, _, ok := api.result(w, r)
	if !ok {
		return
	}
	table, err := groupedBy(r, res.TimeBlockByBorough, res.TimeBlockByStation)
	if err != nil {
		api.badRequestResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(windowedTable{res.Window, res.Empty, table}, api.clock()))
}

func (api *RestAPI) keyMetricsHandler(w http.ResponseWriter, r *http.Request) {
	res, _, ok := api.result(w, r)
	if !ok {
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(res.Metrics, api.clock()))
}

func (api *RestAPI) boroughsHandler(w http.ResponseWriter, r *http.Request) {
	res, _, ok := api.result(w, r)
	if !ok {
		return
	}
	api.sendResponse(w, r, models.NewListResponse(res.BoroughStats.Rows, false, api.clock()))
}

func (api *RestAPI) linesHandler(w http.ResponseWriter, r *http.Request) {
	res, _, ok := api.result(w, r)
	if !ok {
		return
	}
	api.sendResponse(w, r, models.NewListResponse(res.LineStats.Rows, false, api.clock()))
}

// defaultDatesHandler reports the window used when a request names none.
// Both bounds are timestamps, so passing them back selects the same window.
func (api *RestAPI) defaultDatesHandler(w http.ResponseWriter, r *http.Request) {
	window := api.Data.Dataset().DefaultWindow()
	entry := models.DefaultDatesModel{Empty: window.IsZero()}
	if !entry.Empty {
		entry.StartDate = window.Start.Format(ridership.WindowTimestampLayout)
		entry.EndDate = window.End.Format(ridership.WindowTimestampLayout)
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry, api.clock()))
}
