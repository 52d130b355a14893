// Package webui serves the dashboard's static front end and, outside
// production, a debug dump of the loaded dataset.
package webui

import (
	"net/http"

	"ridership.subwaydash.org/internal/app"
)

// WebUI holds the browser-facing handlers.
type WebUI struct {
	*app.Application
	// AssetsDir is where the front end's files live. Defaults to "./web".
	AssetsDir string
}

func (webUI *WebUI) assetsDir() string {
	if webUI.AssetsDir == "" {
		return defaultAssetsDir
	}
	return webUI.AssetsDir
}

// SetWebUIRoutes registers the front end and debug routes on mux.
func (webUI *WebUI) SetWebUIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /debug/", webUI.debugIndexHandler)
	mux.HandleFunc("GET /web/", webUI.assetsHandler)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/web/", http.StatusFound)
	})
}
