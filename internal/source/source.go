// Package source loads raw ridership batches from files, remote tabular-data
// endpoints and SQLite tables, and chains them so a failing primary source
// falls back to the next one.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ridership.subwaydash.org/internal/logging"
	"ridership.subwaydash.org/internal/ridership"
)

// ErrSourceUnavailable is reported when every configured source failed.
var ErrSourceUnavailable = errors.New("no ridership source available")

// Loader produces one raw snapshot per call.
type Loader interface {
	Name() string
	Load(ctx context.Context) (ridership.RawBatch, error)
}

// Observer is notified after every load attempt.
type Observer interface {
	ObserveLoad(source string, rows int, err error)
}

// Outcome is the result of a chained load. Batch is always usable: when
// every source fails it is empty and Err wraps ErrSourceUnavailable.
type Outcome struct {
	Batch  ridership.RawBatch
	Source string
	Err    error
}

// Chain tries its loaders in order and returns the first success.
type Chain struct {
	loaders  []Loader
	logger   *slog.Logger
	observer Observer
}

// NewChain builds a chain. A nil logger uses slog.Default(); observer may be nil.
func NewChain(logger *slog.Logger, observer Observer, loaders ...Loader) *Chain {
	return &Chain{
		loaders:  loaders,
		logger:   logging.Component(logger, "ridership_loader"),
		observer: observer,
	}
}

// Load runs the chain. It never returns a nil batch.
func (c *Chain) Load(ctx context.Context) Outcome {
	var errs []error
	for _, l := range c.loaders {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		start := time.Now()
		batch, err := l.Load(ctx)
		if c.observer != nil {
			c.observer.ObserveLoad(l.Name(), len(batch.Rows), err)
		}
		if err != nil {
			logging.LogError(c.logger, "ridership source failed", err, slog.String("source", l.Name()))
			errs = append(errs, fmt.Errorf("%s: %w", l.Name(), err))
			continue
		}
		logging.LogOperation(c.logger, "ridership_source_loaded",
			slog.String("source", l.Name()),
			slog.Int("rows", len(batch.Rows)),
			slog.Duration("duration", time.Since(start)))
		return Outcome{Batch: batch, Source: l.Name()}
	}

	err := ErrSourceUnavailable
	if len(errs) > 0 {
		err = fmt.Errorf("%w: %w", ErrSourceUnavailable, errors.Join(errs...))
	}
	logging.LogError(c.logger, "all ridership sources failed, continuing with an empty dataset", err)
	return Outcome{
		Batch: ridership.RawBatch{Columns: ridership.NewColumns(), Rows: []ridership.RawRecord{}},
		Err:   err,
	}
}

// Loaders returns the configured loaders in order.
func (c *Chain) Loaders() []Loader {
	return c.loaders
}
