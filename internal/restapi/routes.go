package restapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache-Control max-age tiers in seconds.
const (
	cacheNone   = 0
	cacheShort  = 60
	cacheMedium = 300
)

func (api *RestAPI) handle(mux *http.ServeMux, pattern string, maxAge int, h http.HandlerFunc) {
	mux.Handle(pattern, CacheControlMiddleware(maxAge, api.rateLimiter.Handler()(h)))
}

// SetRoutes registers every endpoint on mux.
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", api.healthHandler)
	if api.Application != nil && api.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(api.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	api.handle(mux, "GET /api/config", cacheNone, api.configHandler)
	api.handle(mux, "GET /api/default-dates", cacheShort, api.defaultDatesHandler)
	api.handle(mux, "GET /api/dashboard", cacheShort, api.dashboardHandler)
	api.handle(mux, "GET /api/hourly", cacheShort, api.hourlyHandler)
	api.handle(mux, "GET /api/weekly", cacheMedium, api.weeklyHandler)
	api.handle(mux, "GET /api/time-blocks", cacheMedium, api.timeBlocksHandler)
	api.handle(mux, "GET /api/metrics", cacheShort, api.keyMetricsHandler)
	api.handle(mux, "GET /api/boroughs", cacheMedium, api.boroughsHandler)
	api.handle(mux, "GET /api/lines", cacheMedium, api.linesHandler)
	api.handle(mux, "GET /api/stations", cacheMedium, api.stationsHandler)
	api.handle(mux, "GET /api/stations/nearest", cacheMedium, api.nearestStationHandler)
	api.handle(mux, "GET /api/stations/nearby", cacheMedium, api.nearbyStationsHandler)
	api.handle(mux, "GET /api/stations/{name}", cacheMedium, api.stationHandler)
	api.handle(mux, "GET /api/map/stations", cacheMedium, api.mapStationsHandler)
	api.handle(mux, "GET /api/export/{table}", cacheShort, api.exportHandler)
}
