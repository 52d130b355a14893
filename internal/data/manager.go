// Package data owns the ridership dataset the service answers from. The
// dataset is replaced wholesale on every successful refresh; readers keep
// the snapshot they started with.
package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"ridership.subwaydash.org/internal/clock"
	"ridership.subwaydash.org/internal/logging"
	"ridership.subwaydash.org/internal/pipeline"
	"ridership.subwaydash.org/internal/ridership"
	"ridership.subwaydash.org/internal/source"
	"ridership.subwaydash.org/internal/utils"
)

// Observer is notified whenever a new dataset is installed.
type Observer interface {
	ObserveDataset(rows int, dropped map[string]int, loadedAt time.Time)
}

// Snapshot is an installed dataset together with its station index.
type Snapshot struct {
	Dataset *pipeline.Dataset
	Index   *utils.StationIndex
}

// Manager loads, holds and refreshes the current Snapshot.
type Manager struct {
	chain    *source.Chain
	cleaner  *ridership.Cleaner
	clock    clock.Clock
	logger   *slog.Logger
	observer Observer

	mu       sync.RWMutex
	snapshot Snapshot
	ready    bool
	lastErr  error

	// updateMu serializes loads so a slow refresh cannot race a forced one.
	updateMu sync.Mutex

	schedMu   sync.Mutex
	scheduler *gocron.Scheduler
}

// Option configures a Manager.
type Option func(*Manager)

func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// NewManager returns a manager holding an empty, not yet ready snapshot.
func NewManager(chain *source.Chain, cleaner *ridership.Cleaner, opts ...Option) *Manager {
	m := &Manager{chain: chain, cleaner: cleaner, clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.Component(m.logger, "dataset_manager")
	if m.cleaner == nil {
		m.cleaner = ridership.NewCleaner()
	}
	m.snapshot = Snapshot{Dataset: pipeline.EmptyDataset(m.clock.Now()), Index: utils.NewStationIndex(nil)}
	return m
}

// Load pulls a fresh batch through the source chain and installs it.
//
// When every source fails the error wraps source.ErrSourceUnavailable. The
// first load then installs an empty dataset so the service can answer with
// empty tables; later loads keep the previous dataset.
func (m *Manager) Load(ctx context.Context) error {
	m.updateMu.Lock()
	defer m.updateMu.Unlock()

	out := m.chain.Load(ctx)

	m.mu.RLock()
	hadData := m.ready && m.snapshot.Dataset.Len() > 0
	m.mu.RUnlock()

	if out.Err != nil && hadData {
		m.mu.Lock()
		m.lastErr = out.Err
		m.mu.Unlock()
		logging.LogError(m.logger, "refresh failed, keeping previous dataset", out.Err)
		return out.Err
	}

	snap := m.build(out)

	m.mu.Lock()
	m.snapshot = snap
	m.ready = true
	m.lastErr = out.Err
	m.mu.Unlock()

	if m.observer != nil {
		m.observer.ObserveDataset(snap.Dataset.Len(), snap.Dataset.Report().Dropped, snap.Dataset.LoadedAt())
	}
	logging.LogOperation(m.logger, "dataset_installed",
		slog.String("source", out.Source),
		slog.Int("rows", snap.Dataset.Len()),
		slog.Int("stations", snap.Index.Len()))
	return out.Err
}

func (m *Manager) build(out source.Outcome) Snapshot {
	ds := pipeline.NewDataset(out.Batch, m.cleaner, out.Source, m.clock.Now())
	if dropped := ds.Report().Dropped; len(dropped) > 0 {
		attrs := make([]slog.Attr, 0, len(dropped))
		for reason, n := range dropped {
			attrs = append(attrs, slog.Int(reason, n))
		}
		logging.LogOperation(m.logger, "rows_dropped_while_cleaning", attrs...)
	}

	stationMap, err := ridership.StationMap(ds.Records())
	if err != nil {
		var missing *ridership.MissingColumnError
		if !errors.As(err, &missing) {
			logging.LogError(m.logger, "failed to build station map", err)
		}
		return Snapshot{Dataset: ds, Index: utils.NewStationIndex(nil)}
	}
	return Snapshot{Dataset: ds, Index: utils.NewStationIndex(stationMap.Rows)}
}

// Snapshot returns the current dataset and station index.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Dataset returns the current dataset. It is never nil.
func (m *Manager) Dataset() *pipeline.Dataset {
	return m.Snapshot().Dataset
}

// IsReady reports whether at least one load has completed.
func (m *Manager) IsReady() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

// LastError returns the error of the most recent load, or nil.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Sources lists the configured loaders in fallback order.
func (m *Manager) Sources() []string {
	loaders := m.chain.Loaders()
	names := make([]string, len(loaders))
	for i, l := range loaders {
		names[i] = l.Name()
	}
	return names
}

// StartRefresh reloads the dataset every interval until Shutdown. Runs never
// overlap. A non-positive interval disables refreshing.
func (m *Manager) StartRefresh(interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	m.schedMu.Lock()
	defer m.schedMu.Unlock()
	if m.scheduler != nil {
		return errors.New("dataset refresh already started")
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	_, err := s.Every(interval).WaitForSchedule().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := m.Load(ctx); err != nil {
			logging.LogError(m.logger, "scheduled dataset refresh failed", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule dataset refresh: %w", err)
	}
	s.StartAsync()
	m.scheduler = s

	logging.LogOperation(m.logger, "dataset_refresh_scheduled", slog.Duration("interval", interval))
	return nil
}

// Shutdown stops scheduled refreshes. It is safe to call more than once.
func (m *Manager) Shutdown() {
	m.schedMu.Lock()
	defer m.schedMu.Unlock()
	if m.scheduler != nil {
		m.scheduler.Stop()
		m.scheduler = nil
	}
}
