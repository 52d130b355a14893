// Package pipeline composes the ridership aggregations into a single run over
// an immutable dataset and a date window.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ridership.subwaydash.org/internal/logging"
	"ridership.subwaydash.org/internal/ridership"
)

// Result holds every derived output of one run. The core outputs are either
// all present or no Result is returned; only the station map is optional.
type Result struct {
	Window ridership.Window `json:"window"`
	// Empty is set when the dataset had no rows. Every table is then empty
	// and the metrics are zero.
	Empty bool `json:"empty"`

	Hourly             ridership.HourlyTable       `json:"hourly_ridership"`
	WeeklyByBorough    ridership.CategoryTable     `json:"weekly_by_borough"`
	WeeklyByStation    ridership.CategoryTable     `json:"weekly_by_station"`
	TimeBlockByBorough ridership.CategoryTable     `json:"time_block_by_borough"`
	TimeBlockByStation ridership.CategoryTable     `json:"time_block_by_station"`
	StationStats       ridership.StationStatsTable `json:"station_stats"`
	BoroughStats       ridership.GroupStatsTable   `json:"borough_stats"`
	LineStats          ridership.GroupStatsTable   `json:"line_stats"`
	Metrics            ridership.Metrics           `json:"metrics"`
	StationMap         ridership.StationMapTable   `json:"station_map"`

	// Unavailable maps optional outputs the dataset could not produce to the
	// reason. Their tables are left empty.
	Unavailable map[string]string `json:"unavailable,omitempty"`
	outputErrs  map[string]error
}

// OutputErr returns why an optional output is unavailable, or nil.
func (r *Result) OutputErr(output string) error {
	return r.outputErrs[output]
}

func (r *Result) markUnavailable(output string, err error) {
	if r.outputErrs == nil {
		r.outputErrs = map[string]error{}
		r.Unavailable = map[string]string{}
	}
	r.outputErrs[output] = err
	r.Unavailable[output] = err.Error()
}

// NamedTable pairs an exportable table with a file-friendly name.
type NamedTable struct {
	Name  string
	Table ridership.Table
}

// Tables lists every available tabular output in a stable order.
func (r *Result) Tables() []NamedTable {
	tables := []NamedTable{
		{"hourly_ridership", r.Hourly},
		{"weekly_ridership_by_borough", r.WeeklyByBorough},
		{"weekly_ridership_by_station", r.WeeklyByStation},
		{"time_block_ridership_by_borough", r.TimeBlockByBorough},
		{"time_block_ridership_by_station", r.TimeBlockByStation},
		{"station_stats", r.StationStats},
		{"borough_stats", r.BoroughStats},
		{"line_stats", r.LineStats},
	}
	if r.OutputErr(ridership.OutputStationMap) == nil {
		tables = append(tables, NamedTable{ridership.OutputStationMap, r.StationMap})
	}
	return tables
}

// Observer is notified after every run.
type Observer interface {
	ObserveRun(d time.Duration, empty bool, err error)
}

// Runner executes runs. It holds no per-run state and is safe for concurrent use.
type Runner struct {
	scope    Scope
	logger   *slog.Logger
	observer Observer
}

// Option configures a Runner.
type Option func(*Runner)

// WithScope sets which outputs use the date-filtered records.
func WithScope(s Scope) Option {
	return func(r *Runner) { r.scope = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// NewRunner returns a runner using DefaultScope unless configured otherwise.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{scope: DefaultScope()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.Component(r.logger, "pipeline")
	return r
}

// Scope returns the configured filter scope.
func (r *Runner) Scope() Scope { return r.scope }

// Run computes every output for ds. A zero window means the calendar day of
// the newest record. Outputs in the runner's scope see only records inside
// the window; the others see the whole dataset. If any core output fails the
// errors are joined and no Result is returned. A station map the dataset
// lacks columns for is only marked unavailable on the Result.
func (r *Runner) Run(ctx context.Context, ds *Dataset, w ridership.Window) (*Result, error) {
	start := time.Now()
	if ds == nil {
		ds = EmptyDataset(start)
	}
	if w.IsZero() {
		w = ds.DefaultWindow()
	}

	res, err := r.run(ctx, ds, w)
	elapsed := time.Since(start)
	if r.observer != nil {
		r.observer.ObserveRun(elapsed, ds.Len() == 0, err)
	}

	attrs := []slog.Attr{
		slog.String("window_start", w.Start.Format(time.DateTime)),
		slog.String("window_end", w.End.Format(time.DateTime)),
		slog.Int("rows", ds.Len()),
		slog.Duration("duration", elapsed),
	}
	if err != nil {
		logging.LogError(r.logger, "pipeline run failed", err, attrs...)
		return nil, err
	}
	if len(res.Unavailable) > 0 {
		attrs = append(attrs, slog.Any("unavailable", res.Unavailable))
	}
	logging.LogOperation(r.logger, "pipeline_run_completed", attrs...)
	return res, nil
}

func (r *Runner) run(ctx context.Context, ds *Dataset, w ridership.Window) (*Result, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	full := ds.Records()
	var filtered ridership.Records
	if len(r.scope) > 0 {
		filtered = full.Filter(w)
	}
	input := func(output string) ridership.Records {
		if r.scope.Filtered(output) {
			return filtered
		}
		return full
	}

	res := &Result{Window: w, Empty: ds.Len() == 0}
	var errs []error
	step := func(output string, fn func(ridership.Records) error) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", output, err))
			return
		}
		if err := fn(input(output)); err != nil {
			errs = append(errs, err)
		}
	}

	step(ridership.OutputHourly, func(in ridership.Records) (err error) {
		res.Hourly, err = ridership.HourlyRidership(in)
		return err
	})
	step(ridership.OutputWeekly, func(in ridership.Records) (err error) {
		res.WeeklyByBorough, res.WeeklyByStation, err = ridership.WeeklyRidership(in)
		return err
	})
	step(ridership.OutputTimeBlock, func(in ridership.Records) (err error) {
		res.TimeBlockByBorough, res.TimeBlockByStation, err = ridership.TimeBlockRidership(in)
		return err
	})
	step(ridership.OutputStationStats, func(in ridership.Records) (err error) {
		res.StationStats, err = ridership.StationStats(in)
		return err
	})
	step(ridership.OutputBoroughStats, func(in ridership.Records) (err error) {
		res.BoroughStats, err = ridership.BoroughStats(in)
		return err
	})
	step(ridership.OutputLineStats, func(in ridership.Records) (err error) {
		res.LineStats, err = ridership.LineStats(in)
		return err
	})
	step(ridership.OutputMetrics, func(in ridership.Records) (err error) {
		res.Metrics, err = ridership.ComputeMetrics(in)
		return err
	})
	step(ridership.OutputStationMap, func(in ridership.Records) error {
		table, err := ridership.StationMap(in)
		var missing *ridership.MissingColumnError
		if errors.As(err, &missing) {
			res.markUnavailable(ridership.OutputStationMap, err)
			return nil
		}
		res.StationMap = table
		return err
	})

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return res, nil
}

// RunBatch cleans batch with the default cleaner and runs it once.
func RunBatch(ctx context.Context, batch ridership.RawBatch, w ridership.Window, opts ...Option) (*Result, error) {
	return NewRunner(opts...).Run(ctx, NewDataset(batch, nil, "", time.Now()), w)
}
