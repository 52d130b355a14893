// Command ridership runs the aggregation pipeline once and prints every
// derived output as JSON, or writes one CSV file per table.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"ridership.subwaydash.org/internal/appconf"
	"ridership.subwaydash.org/internal/logging"
	"ridership.subwaydash.org/internal/pipeline"
	"ridership.subwaydash.org/internal/ridership"
	"ridership.subwaydash.org/internal/source"
	"ridership.subwaydash.org/internal/tabular"
)

type options struct {
	configFile string
	start      string
	end        string
	scope      string
	outDir     string
	verbose    bool
	data       appconf.DataConfig
	timezone   string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "ridership: %v\n", err)
		os.Exit(1)
	}
}

func parseOptions(args []string, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("ridership", flag.ContinueOnError)
	fs.SetOutput(output)

	var o options
	fs.StringVar(&o.configFile, "f", "", "Path to a YAML configuration file")
	fs.StringVar(&o.data.CSVPath, "csv", "", "Local ridership CSV export")
	fs.StringVar(&o.data.RemoteURL, "url", "", "Remote tabular-data endpoint")
	fs.IntVar(&o.data.RowLimit, "row-limit", appconf.DefaultRowLimit, "Row limit requested from the remote endpoint")
	fs.StringVar(&o.data.SQLitePath, "sqlite", "", "SQLite database holding ridership rows")
	fs.StringVar(&o.data.SQLiteTable, "sqlite-table", appconf.DefaultSQLiteTable, "Table name inside the SQLite database")
	fs.StringVar(&o.start, "start", "", "Window start, YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS")
	fs.StringVar(&o.end, "end", "", "Window end; a date is inclusive, a timestamp exclusive")
	fs.StringVar(&o.scope, "filter-scope", "", "Comma separated outputs restricted to the window, or \"all\"")
	fs.StringVar(&o.timezone, "timezone", "", "Zone timestamps are interpreted in")
	fs.StringVar(&o.outDir, "out", "", "Write one CSV per table into this directory instead of JSON to stdout")
	fs.BoolVar(&o.verbose, "verbose", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return o, nil
}

// resolve layers the command line over the configuration file.
func (o options) resolve() (appconf.Config, error) {
	cfg := appconf.Default()
	cfg.Data.RemoteURL = ""
	if o.configFile != "" {
		fileCfg, err := appconf.LoadFromFile(o.configFile)
		if err != nil {
			return appconf.Config{}, err
		}
		cfg = fileCfg.ToAppConfig()
	}
	if o.data.CSVPath != "" || o.data.RemoteURL != "" || o.data.SQLitePath != "" {
		o.data.AppToken = cfg.Data.AppToken
		o.data.HTTPTimeout = cfg.Data.HTTPTimeout
		cfg.Data = o.data
	}
	if o.scope != "" {
		cfg.FilterScope = appconf.ParseList(o.scope)
	}
	if o.timezone != "" {
		cfg.Timezone = o.timezone
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseOptions(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := o.resolve()
	if err != nil {
		return err
	}
	logger := logging.NewLogger(stderr, false, o.verbose)

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	window, err := ridership.ParseWindow(o.start, o.end, loc)
	if err != nil {
		return err
	}
	scope, err := pipeline.ParseScope(cfg.FilterScope)
	if err != nil {
		return fmt.Errorf("invalid filter scope: %w", err)
	}

	loaders, db, err := source.FromConfig(ctx, cfg.Data, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer logging.SafeCloseWithLogging(db, logger, "ridership DB")
	}

	// When every source fails the empty result is still written, and the
	// source error becomes the exit status.
	out := source.NewChain(logger, nil, loaders...).Load(ctx)
	cleanerOpts := []ridership.CleanerOption{ridership.WithLocation(loc)}
	if cfg.ExcludedStations != nil {
		cleanerOpts = append(cleanerOpts, ridership.WithExcludedStations(cfg.ExcludedStations))
	}
	ds := pipeline.NewDataset(out.Batch, ridership.NewCleaner(cleanerOpts...), out.Source, time.Now())

	res, err := pipeline.NewRunner(pipeline.WithScope(scope), pipeline.WithLogger(logger)).Run(ctx, ds, window)
	if err != nil {
		return err
	}
	logging.LogOperation(logger, "pipeline_complete",
		slog.String("source", out.Source),
		slog.Int("rows", ds.Len()),
		slog.Time("window_start", res.Window.Start),
		slog.Time("window_end", res.Window.End))

	if err := write(o.outDir, res, stdout); err != nil {
		return err
	}
	return out.Err
}

func write(outDir string, res *pipeline.Result, stdout io.Writer) error {
	if outDir == "" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, nt := range res.Tables() {
		if err := tabular.WriteCSVFile(outDir, nt.Name, nt.Table); err != nil {
			return err
		}
	}
	return nil
}
