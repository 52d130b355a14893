package restapi

import (
	"time"

	"github.com/bluele/gcache"

	"ridership.subwaydash.org/internal/app"
	"ridership.subwaydash.org/internal/logging"
)

// RestAPI serves the dashboard's JSON and CSV endpoints.
type RestAPI struct {
	*app.Application
	rateLimiter   *RateLimitMiddleware
	staleDetector *StaleDetector
	results       gcache.Cache
	location      *time.Location
}

// NewRestAPI wires the handlers to application. The result cache and rate
// limiter are sized from application.Config.
func NewRestAPI(application *app.Application) *RestAPI {
	api := &RestAPI{
		Application:   application,
		staleDetector: NewStaleDetector().WithThreshold(application.Config.StaleAfter),
		location:      time.UTC,
	}
	api.rateLimiter = NewRateLimitMiddleware(application.Config.RateLimit, time.Second, nil, api.clock())
	if loc, err := application.Config.Location(); err == nil {
		api.location = loc
	} else {
		logging.LogError(application.Logger, "invalid timezone, using UTC", err)
	}
	if application.Config.CacheSize > 0 {
		b := gcache.New(application.Config.CacheSize).LRU()
		if application.Config.CacheTTL > 0 {
			b = b.Expiration(application.Config.CacheTTL)
		}
		api.results = b.Build()
	}
	return api
}

// Shutdown stops background work owned by the API.
func (api *RestAPI) Shutdown() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
	if api.results != nil {
		api.results.Purge()
	}
}
