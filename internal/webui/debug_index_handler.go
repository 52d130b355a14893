package webui

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"ridership.subwaydash.org/internal/appconf"
	"ridership.subwaydash.org/internal/ridership"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

// maxDebugRecords caps the records dump; the full dataset is far too large
// to render.
const maxDebugRecords = 200

var debugDataTypes = []string{"report", "records", "columns", "stations", "scope", "sources", "config", "last_error"}

type debugData struct {
	Title string
	Pre   string
	Types []string
}

func writeDebugData(w http.ResponseWriter, title string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := debugTemplate.Execute(w, debugData{
		Title: title,
		Pre:   spew.Sdump(data),
		Types: debugDataTypes,
	})
	if err != nil {
		slog.Error("failed to execute debug template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.Application == nil || webUI.Config.Env == appconf.Production || webUI.Data == nil {
		http.NotFound(w, r)
		return
	}

	ds := webUI.Data.Dataset()
	var data any
	var title string

	switch r.URL.Query().Get("dataType") {
	case "report":
		data = ds.Report()
		title = "Dataset - Cleaning Report"
	case "records":
		rows := ds.Records().Rows
		if len(rows) > maxDebugRecords {
			rows = rows[:maxDebugRecords]
		}
		data = rows
		title = "Dataset - Cleaned Records"
	case "columns":
		data = ds.Records().Columns.Names()
		title = "Dataset - Source Columns"
	case "stations":
		table, err := ridership.StationMap(ds.Records())
		if err != nil {
			data = err.Error()
		} else {
			data = table.Rows
		}
		title = "Dataset - Station Map"
	case "scope":
		if webUI.Runner != nil {
			data = webUI.Runner.Scope().Names()
		}
		title = "Pipeline - Date Filter Scope"
	case "sources":
		data = map[string]any{
			"configured": webUI.Data.Sources(),
			"loaded":     ds.Source(),
			"loadedAt":   ds.LoadedAt(),
		}
		title = "Dataset - Sources"
	case "config":
		cfg := webUI.Config
		cfg.Data.AppToken = ""
		data = cfg
		title = "Application Config"
	case "last_error":
		data = webUI.Data.LastError()
		title = "Dataset - Last Load Error"
	default:
		data = map[string][]string{"Please use one of the following": debugDataTypes}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}
