package app

import (
	"database/sql"
	"log/slog"

	"ridership.subwaydash.org/internal/appconf"
	"ridership.subwaydash.org/internal/clock"
	"ridership.subwaydash.org/internal/data"
	"ridership.subwaydash.org/internal/metrics"
	"ridership.subwaydash.org/internal/pipeline"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config  appconf.Config
	Logger  *slog.Logger
	Data    *data.Manager
	Runner  *pipeline.Runner
	Clock   clock.Clock
	Metrics *metrics.Metrics
	// DB is the SQLite source handle when one is configured. It is only
	// pinged by the health check; loads go through Data.
	DB *sql.DB
}
