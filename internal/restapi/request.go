package restapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"ridership.subwaydash.org/internal/data"
	"ridership.subwaydash.org/internal/logging"
	"ridership.subwaydash.org/internal/pipeline"
	"ridership.subwaydash.org/internal/ridership"
)

func (api *RestAPI) logger(r *http.Request) *slog.Logger {
	if r != nil {
		return logging.FromContext(r.Context())
	}
	if api.Application != nil && api.Logger != nil {
		return api.Logger
	}
	return slog.Default()
}

func logRequestAttrs(r *http.Request) []slog.Attr {
	if r == nil {
		return nil
	}
	return []slog.Attr{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	}
}

// parseWindow reads the start and end query parameters in the configured
// timezone.
func (api *RestAPI) parseWindow(r *http.Request) (ridership.Window, error) {
	q := r.URL.Query()
	return ridership.ParseWindow(q.Get("start"), q.Get("end"), api.location)
}

// floatParam reads a required float query parameter within [lo, hi].
func floatParam(r *http.Request, name string, lo, hi float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

type resultKey struct {
	dataset    *pipeline.Dataset
	start, end int64
}

// result runs the pipeline for the request's window over the current
// snapshot, reusing a cached result for the same dataset and window. The
// snapshot is returned so handlers pair the result with the station index
// built from the same dataset.
func (api *RestAPI) result(w http.ResponseWriter, r *http.Request) (*pipeline.Result, data.Snapshot, bool) {
	window, err := api.parseWindow(r)
	if err != nil {
		api.badRequestResponse(w, r, err)
		return nil, data.Snapshot{}, false
	}

	snap := api.Data.Snapshot()
	ds := snap.Dataset
	key := resultKey{dataset: ds, start: window.Start.Unix(), end: window.End.Unix()}
	if api.results != nil {
		if cached, err := api.results.Get(key); err == nil {
			return cached.(*pipeline.Result), snap, true
		}
	}

	res, err := api.Runner.Run(r.Context(), ds, window)
	if err != nil {
		api.runErrorResponse(w, r, err)
		return nil, data.Snapshot{}, false
	}
	if api.results != nil {
		if err := api.results.Set(key, res); err != nil {
			logging.LogError(api.logger(r), "failed to cache pipeline result", err)
		}
	}
	return res, snap, true
}
