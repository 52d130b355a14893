package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"ridership.subwaydash.org/internal/appconf"
	"ridership.subwaydash.org/internal/buildinfo"
)

func main() {
	cfg, opts, err := parseConfig(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	coreApp, err := BuildApplication(cfg, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build application: %v\n", err)
		os.Exit(1)
	}
	coreApp.Logger.Info("ridership dashboard",
		"version", buildinfo.Version,
		"commit", buildinfo.ShortHash())

	srv, api := CreateServer(coreApp, cfg, opts)
	if err := Run(context.Background(), srv, coreApp, api); err != nil {
		coreApp.Logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// parseConfig resolves the configuration in increasing precedence:
// defaults, the YAML file named by -f, environment variables, then flags
// given explicitly on the command line.
func parseConfig(args []string, getenv func(string) string, output io.Writer) (appconf.Config, Options, error) {
	fs := flag.NewFlagSet("ridership-api", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		configFile  string
		opts        Options
		port        int
		env         string
		verbose     bool
		rateLimit   int
		csvPath     string
		remoteURL   string
		sqlitePath  string
		sqliteTable string
		refresh     time.Duration
		timezone    string
		filterScope string
		excluded    string
		staleAfter  time.Duration
		cacheSize   int
		cacheTTL    time.Duration
		httpTimeout time.Duration
		rowLimit    int
	)
	fs.StringVar(&configFile, "f", "", "Path to a YAML configuration file")
	fs.IntVar(&port, "port", appconf.DefaultPort, "API server port")
	fs.StringVar(&env, "env", "development", "Environment (development|test|production)")
	fs.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	fs.IntVar(&rateLimit, "rate-limit", appconf.DefaultRateLimit, "Requests per second per client, 0 disables limiting")
	fs.StringVar(&csvPath, "csv", "", "Local ridership CSV export, tried first")
	fs.StringVar(&remoteURL, "url", appconf.DefaultRemoteURL, "Remote tabular-data endpoint")
	fs.IntVar(&rowLimit, "row-limit", appconf.DefaultRowLimit, "Row limit requested from the remote endpoint")
	fs.StringVar(&sqlitePath, "sqlite", "", "SQLite database holding ridership rows, tried last")
	fs.StringVar(&sqliteTable, "sqlite-table", appconf.DefaultSQLiteTable, "Table name inside the SQLite database")
	fs.DurationVar(&httpTimeout, "http-timeout", appconf.DefaultHTTPTimeout, "Timeout for remote loads")
	fs.DurationVar(&refresh, "refresh", 0, "Dataset refresh interval, 0 disables refreshing")
	fs.StringVar(&timezone, "timezone", "UTC", "Zone ridership timestamps are interpreted in")
	fs.StringVar(&filterScope, "filter-scope", "", "Comma separated outputs restricted to the date window, or \"all\"")
	fs.StringVar(&excluded, "excluded-stations", "", "Comma separated station complexes dropped while cleaning")
	fs.DurationVar(&staleAfter, "stale-after", appconf.DefaultStaleAfter, "Age of the newest record after which /healthz reports stale")
	fs.IntVar(&cacheSize, "cache-size", appconf.DefaultCacheSize, "Number of pipeline results kept in memory")
	fs.DurationVar(&cacheTTL, "cache-ttl", appconf.DefaultCacheTTL, "How long a cached pipeline result stays valid")
	fs.StringVar(&opts.ClockFile, "clock-file", "", "File holding a start time for a shifted clock")
	fs.StringVar(&opts.AssetsDir, "assets", "", "Directory holding the web front end")

	if err := fs.Parse(args); err != nil {
		return appconf.Config{}, Options{}, err
	}

	cfg := appconf.Default()
	if configFile != "" {
		fileCfg, err := appconf.LoadFromFile(configFile)
		if err != nil {
			return appconf.Config{}, Options{}, err
		}
		cfg = fileCfg.ToAppConfig()
	}
	appconf.ApplyEnv(&cfg, getenv)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = port
		case "env":
			cfg.Env = appconf.EnvFlagToEnvironment(env)
		case "verbose":
			cfg.Verbose = verbose
		case "rate-limit":
			cfg.RateLimit = rateLimit
		case "csv":
			cfg.Data.CSVPath = csvPath
		case "url":
			cfg.Data.RemoteURL = remoteURL
		case "row-limit":
			cfg.Data.RowLimit = rowLimit
		case "sqlite":
			cfg.Data.SQLitePath = sqlitePath
		case "sqlite-table":
			cfg.Data.SQLiteTable = sqliteTable
		case "http-timeout":
			cfg.Data.HTTPTimeout = httpTimeout
		case "refresh":
			cfg.RefreshInterval = refresh
		case "timezone":
			cfg.Timezone = timezone
		case "filter-scope":
			cfg.FilterScope = appconf.ParseList(filterScope)
		case "excluded-stations":
			cfg.ExcludedStations = appconf.ParseList(excluded)
		case "stale-after":
			cfg.StaleAfter = staleAfter
		case "cache-size":
			cfg.CacheSize = cacheSize
		case "cache-ttl":
			cfg.CacheTTL = cacheTTL
		}
	})
	if cfg.Port < 0 || cfg.Port > 65535 {
		return appconf.Config{}, Options{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return cfg, opts, nil
}
