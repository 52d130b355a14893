// Package metrics provides Prometheus metrics for the ridership service.
package metrics

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values shared by the load and pipeline counters.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeEmpty   = "empty"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Dataset metrics
	DatasetLoadsTotal *prometheus.CounterVec
	DatasetRows       prometheus.Gauge
	DroppedRowsTotal  *prometheus.CounterVec
	DatasetLoadedAt   prometheus.Gauge

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  prometheus.Histogram

	// Database metrics
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge
	DBWaitSecondsTotal prometheus.Counter

	// logger for error reporting
	logger *slog.Logger

	// collectorStarted prevents spawning multiple collector goroutines
	collectorStarted atomic.Bool

	// cancel stops the DB stats collector goroutine
	cancel context.CancelFunc

	// wg tracks the DB stats collector goroutine for graceful shutdown
	wg sync.WaitGroup
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	httpRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ridership_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ridership_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	datasetLoadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ridership_dataset_loads_total",
			Help: "Load attempts per ridership source",
		},
		[]string{"source", "outcome"},
	)

	datasetRows := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ridership_dataset_rows",
		Help: "Cleaned rows in the current dataset",
	})

	droppedRowsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ridership_dropped_rows_total",
			Help: "Rows removed while cleaning, by reason",
		},
		[]string{"reason"},
	)

	datasetLoadedAt := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ridership_dataset_loaded_timestamp_seconds",
		Help: "Unix time the current dataset was built",
	})

	pipelineRunsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ridership_pipeline_runs_total",
			Help: "Pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	pipelineDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ridership_pipeline_duration_seconds",
		Help:    "Pipeline run latency distribution",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	})

	dbConnectionsOpen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ridership_db_connections_open",
		Help: "Number of open database connections",
	})

	dbConnectionsInUse := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ridership_db_connections_in_use",
		Help: "Number of database connections currently in use",
	})

	dbConnectionsIdle := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ridership_db_connections_idle",
		Help: "Number of idle database connections",
	})

	dbWaitSecondsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ridership_db_wait_seconds_total",
		Help: "Total time blocked waiting for a database connection",
	})

	// Register all metrics with the custom registry
	registry.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		datasetLoadsTotal,
		datasetRows,
		droppedRowsTotal,
		datasetLoadedAt,
		pipelineRunsTotal,
		pipelineDuration,
		dbConnectionsOpen,
		dbConnectionsInUse,
		dbConnectionsIdle,
		dbWaitSecondsTotal,
	)

	return &Metrics{
		Registry:            registry,
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		DatasetLoadsTotal:   datasetLoadsTotal,
		DatasetRows:         datasetRows,
		DroppedRowsTotal:    droppedRowsTotal,
		DatasetLoadedAt:     datasetLoadedAt,
		PipelineRunsTotal:   pipelineRunsTotal,
		PipelineDuration:    pipelineDuration,
		DBConnectionsOpen:   dbConnectionsOpen,
		DBConnectionsInUse:  dbConnectionsInUse,
		DBConnectionsIdle:   dbConnectionsIdle,
		DBWaitSecondsTotal:  dbWaitSecondsTotal,
		logger:              logger,
	}
}

// ObserveLoad records one source load attempt.
func (m *Metrics) ObserveLoad(source string, _ int, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.DatasetLoadsTotal.WithLabelValues(source, outcome).Inc()
}

// ObserveDataset records the size of a freshly built dataset and why rows were dropped.
func (m *Metrics) ObserveDataset(rows int, dropped map[string]int, loadedAt time.Time) {
	m.DatasetRows.Set(float64(rows))
	for reason, n := range dropped {
		m.DroppedRowsTotal.WithLabelValues(reason).Add(float64(n))
	}
	m.DatasetLoadedAt.Set(float64(loadedAt.Unix()))
}

// ObserveRun records one pipeline run.
func (m *Metrics) ObserveRun(d time.Duration, empty bool, err error) {
	outcome := OutcomeSuccess
	switch {
	case err != nil:
		outcome = OutcomeError
	case empty:
		outcome = OutcomeEmpty
	}
	m.PipelineRunsTotal.WithLabelValues(outcome).Inc()
	m.PipelineDuration.Observe(d.Seconds())
}

// StartDBStatsCollector starts a goroutine that periodically collects database
// connection pool statistics and updates the corresponding metrics.
// The interval specifies how often to collect stats.
// This method is idempotent - calling it multiple times has no effect after the first call.
// Call Shutdown() to stop the collector.
func (m *Metrics) StartDBStatsCollector(db *sql.DB, interval time.Duration) {
	if db == nil {
		return
	}

	// Prevent spawning multiple collectors
	if !m.collectorStarted.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	var lastWaitDuration time.Duration

	// Add to WaitGroup BEFORE exposing cancel to avoid race with Shutdown
	m.wg.Add(1)
	m.cancel = cancel

	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				if m.logger != nil {
					m.logger.Error("panic in DB stats collector", "error", r)
				}
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.collectDBStats(db.Stats(), &lastWaitDuration)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Metrics) collectDBStats(stats sql.DBStats, lastWait *time.Duration) {
	m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
	m.DBConnectionsInUse.Set(float64(stats.InUse))
	m.DBConnectionsIdle.Set(float64(stats.Idle))

	// Add the delta of wait duration since last check
	if delta := stats.WaitDuration - *lastWait; delta > 0 {
		m.DBWaitSecondsTotal.Add(delta.Seconds())
	}
	*lastWait = stats.WaitDuration
}

// Shutdown stops the DB stats collector goroutine and waits for it to exit.
// This method is safe to call multiple times.
func (m *Metrics) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}
