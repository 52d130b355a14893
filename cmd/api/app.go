package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"ridership.subwaydash.org/internal/app"
	"ridership.subwaydash.org/internal/appconf"
	"ridership.subwaydash.org/internal/clock"
	"ridership.subwaydash.org/internal/data"
	"ridership.subwaydash.org/internal/logging"
	"ridership.subwaydash.org/internal/metrics"
	"ridership.subwaydash.org/internal/pipeline"
	"ridership.subwaydash.org/internal/restapi"
	"ridership.subwaydash.org/internal/ridership"
	"ridership.subwaydash.org/internal/source"
	"ridership.subwaydash.org/internal/webui"
)

const (
	nowEnvVar           = "RIDERSHIP_NOW"
	initialLoadTimeout  = 10 * time.Minute
	dbStatsInterval     = 15 * time.Second
	shutdownGracePeriod = 30 * time.Second
)

// Options are the settings that only the server binary needs.
type Options struct {
	// ClockFile holds a start time for a shifted clock. RIDERSHIP_NOW takes
	// precedence over it.
	ClockFile string
	AssetsDir string
}

// BuildApplication wires the source chain, dataset manager and pipeline
// runner from cfg and performs the first load. A failed first load is not
// fatal: the service starts with an empty dataset and reports it on
// /healthz until a refresh succeeds.
func BuildApplication(cfg appconf.Config, opts Options) (*app.Application, error) {
	logger := logging.NewLogger(os.Stdout, cfg.Env == appconf.Production, cfg.Verbose)

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	scope, err := pipeline.ParseScope(cfg.FilterScope)
	if err != nil {
		return nil, fmt.Errorf("invalid filter scope: %w", err)
	}
	appClock, err := clock.FromEnvironment(nowEnvVar, opts.ClockFile, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize clock: %w", err)
	}

	m := metrics.NewWithLogger(logger)

	openCtx, cancelOpen := context.WithTimeout(context.Background(), 30*time.Second)
	loaders, db, err := source.FromConfig(openCtx, cfg.Data, logger)
	cancelOpen()
	if err != nil {
		m.Shutdown()
		return nil, err
	}
	chain := source.NewChain(logger, m, loaders...)

	cleanerOpts := []ridership.CleanerOption{ridership.WithLocation(loc)}
	if cfg.ExcludedStations != nil {
		cleanerOpts = append(cleanerOpts, ridership.WithExcludedStations(cfg.ExcludedStations))
	}
	manager := data.NewManager(chain, ridership.NewCleaner(cleanerOpts...),
		data.WithClock(appClock),
		data.WithLogger(logger),
		data.WithObserver(m))

	runner := pipeline.NewRunner(
		pipeline.WithScope(scope),
		pipeline.WithLogger(logger),
		pipeline.WithObserver(m))

	ctx, cancel := context.WithTimeout(context.Background(), initialLoadTimeout)
	defer cancel()
	if err := manager.Load(ctx); err != nil {
		logging.LogError(logger, "initial dataset load failed, starting empty", err)
	}

	if err := manager.StartRefresh(cfg.RefreshInterval); err != nil {
		manager.Shutdown()
		m.Shutdown()
		return nil, err
	}

	coreApp := &app.Application{
		Config:  cfg,
		Logger:  logger,
		Data:    manager,
		Runner:  runner,
		Clock:   appClock,
		Metrics: m,
	}
	if db != nil {
		coreApp.DB = db.DB
		m.StartDBStatsCollector(db.DB, dbStatsInterval)
	}
	return coreApp, nil
}

// CreateServer builds the HTTP server and its handler chain.
func CreateServer(coreApp *app.Application, cfg appconf.Config, opts Options) (*http.Server, *restapi.RestAPI) {
	api := restapi.NewRestAPI(coreApp)
	ui := &webui.WebUI{Application: coreApp, AssetsDir: opts.AssetsDir}

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	ui.SetWebUIRoutes(mux)

	var handler http.Handler = restapi.MetricsHandler(coreApp.Metrics)(mux)
	handler = gzhttp.GzipHandler(handler)
	handler = restapi.NewRequestLoggingMiddleware(coreApp.Logger)(handler)
	handler = restapi.RequestIDMiddleware(handler)

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(coreApp.Logger.Handler(), slog.LevelError),
	}
	return srv, api
}

// Run serves until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then shuts everything down.
func Run(ctx context.Context, srv *http.Server, coreApp *app.Application, api *restapi.RestAPI) error {
	logger := logging.Component(coreApp.Logger, "server")
	logging.LogOperation(logger, "server_starting",
		slog.String("addr", srv.Addr),
		slog.String("env", coreApp.Config.Env.String()))

	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var serveErr error
	select {
	case err, ok := <-serverErrors:
		if ok {
			serveErr = fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		logging.LogOperation(logger, "shutdown_signal_received", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logging.LogOperation(logger, "shutdown_context_done")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogError(logger, "server shutdown failed", err)
		serveErr = errors.Join(serveErr, err)
	}

	api.Shutdown()
	if coreApp.Data != nil {
		coreApp.Data.Shutdown()
	}
	if coreApp.Metrics != nil {
		coreApp.Metrics.Shutdown()
	}
	if coreApp.DB != nil {
		if err := coreApp.DB.Close(); err != nil {
			logging.LogError(logger, "failed to close ridership DB", err)
		}
	}

	logging.LogOperation(logger, "server_stopped")
	return serveErr
}
