package restapi

import (
	"net/http"
	"strings"

	"github.com/twpayne/go-polyline"

	"ridership.subwaydash.org/internal/models"
	"ridership.subwaydash.org/internal/ridership"
	"ridership.subwaydash.org/internal/utils"
)

const (
	defaultNearbyRadius = 500.0
	maxNearbyRadius     = 5000.0
	maxNearbyResults    = 50
)

// StationDetails is the click-through view of one station.
type StationDetails struct {
	Stats     ridership.StationStatsRow  `json:"stats"`
	Locations []ridership.StationMapRow `json:"locations"`
}

// StationMapEntry is the map layer. Polyline encodes every station's
// coordinates in the order of Stations.
type StationMapEntry struct {
	Stations []ridership.StationMapRow `json:"stations"`
	Polyline string                    `json:"polyline"`
	Bounds   utils.CoordinateBounds    `json:"bounds"`
}

// NearbyStation is an index hit together with the station's statistics.
type NearbyStation struct {
	utils.StationHit
	Stats *ridership.StationStatsRow `json:"stats,omitempty"`
}

func (api *RestAPI) stationsHandler(w http.ResponseWriter, r *http.Request) {
	res, _, ok := api.result(w, r)
	if !ok {
		return
	}
	api.sendResponse(w, r, models.NewListResponse(res.StationStats.Rows, false, api.clock()))
}

// stationHandler looks a station up by display name, case-insensitively.
// A display name can cover several complexes, so locations is a list.
func (api *RestAPI) stationHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	res, _, ok := api.result(w, r)
	if !ok {
		return
	}

	var details StationDetails
	found := false
	for _, row := range res.StationStats.Rows {
		if strings.EqualFold(row.Station, name) {
			details.Stats, found = row, true
			break
		}
	}
	if !found {
		api.sendNotFound(w, r)
		return
	}
	details.Locations = []ridership.StationMapRow{}
	for _, row := range res.StationMap.Rows {
		if row.Station == details.Stats.Station {
			details.Locations = append(details.Locations, row)
		}
	}
	api.sendResponse(w, r, models.NewEntryResponse(details, api.clock()))
}

func (api *RestAPI) withStats(res *ridership.StationStatsTable, hit utils.StationHit) NearbyStation {
	out := NearbyStation{StationHit: hit}
	if res != nil {
		if row, ok := res.Find(hit.Station.Station); ok {
			out.Stats = &row
		}
	}
	return out
}

func (api *RestAPI) nearestStationHandler(w http.ResponseWriter, r *http.Request) {
	lat, err := floatParam(r, "lat", -90, 90)
	if err != nil {
		api.badRequestResponse(w, r, err)
		return
	}
	lon, err := floatParam(r, "lon", -180, 180)
	if err != nil {
		api.badRequestResponse(w, r, err)
		return
	}
	res, snap, ok := api.result(w, r)
	if !ok {
		return
	}

	hit, found := snap.Index.Nearest(lat, lon)
	if !found {
		api.sendNotFound(w, r)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(api.withStats(&res.StationStats, hit), api.clock()))
}

func (api *RestAPI) nearbyStationsHandler(w http.ResponseWriter, r *http.Request) {
	lat, err := floatParam(r, "lat", -90, 90)
	if err != nil {
		api.badRequestResponse(w, r, err)
		return
	}
	lon, err := floatParam(r, "lon", -180, 180)
	if err != nil {
		api.badRequestResponse(w, r, err)
		return
	}
	radius := defaultNearbyRadius
	if r.URL.Query().Get("radius") != "" {
		if radius, err = floatParam(r, "radius", 1, maxNearbyRadius); err != nil {
			api.badRequestResponse(w, r, err)
			return
		}
	}
	res, snap, ok := api.result(w, r)
	if !ok {
		return
	}

	hits := snap.Index.Within(lat, lon, radius)
	limitExceeded := len(hits) > maxNearbyResults
	if limitExceeded {
		hits = hits[:maxNearbyResults]
	}
	list := make([]NearbyStation, 0, len(hits))
	for _, hit := range hits {
		list = append(list, api.withStats(&res.StationStats, hit))
	}
	api.sendResponse(w, r, models.NewListResponse(list, limitExceeded, api.clock()))
}

func (api *RestAPI) mapStationsHandler(w http.ResponseWriter, r *http.Request) {
	res, snap, ok := api.result(w, r)
	if !ok {
		return
	}
	if err := res.OutputErr(ridership.OutputStationMap); err != nil {
		api.runErrorResponse(w, r, err)
		return
	}

	coords := make([][]float64, 0, len(res.StationMap.Rows))
	for _, row := range res.StationMap.Rows {
		coords = append(coords, []float64{row.Latitude, row.Longitude})
	}
	entry := StationMapEntry{
		Stations: res.StationMap.Rows,
		Polyline: string(polyline.EncodeCoords(coords)),
		Bounds:   snap.Index.Bounds(),
	}
	if entry.Stations == nil {
		entry.Stations = []ridership.StationMapRow{}
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry, api.clock()))
}
