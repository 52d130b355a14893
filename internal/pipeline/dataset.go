package pipeline

import (
	"time"

	"ridership.subwaydash.org/internal/ridership"
)

// Dataset is one cleaned snapshot. It is built once and never modified, so a
// single value can be shared by every concurrent run.
type Dataset struct {
	records  ridership.Records
	report   ridership.CleanReport
	source   string
	loadedAt time.Time
}

// NewDataset cleans batch with cleaner. A nil cleaner uses the defaults.
func NewDataset(batch ridership.RawBatch, cleaner *ridership.Cleaner, source string, loadedAt time.Time) *Dataset {
	if cleaner == nil {
		cleaner = ridership.NewCleaner()
	}
	records, report := cleaner.Clean(batch)
	return &Dataset{records: records, report: report, source: source, loadedAt: loadedAt}
}

// EmptyDataset is the dataset used before the first load or after every source failed.
func EmptyDataset(loadedAt time.Time) *Dataset {
	return NewDataset(ridership.RawBatch{Columns: ridership.NewColumns()}, nil, "", loadedAt)
}

// Records returns the cleaned rows. Callers must treat them as read-only.
func (d *Dataset) Records() ridership.Records { return d.records }

// Report returns the cleaning summary.
func (d *Dataset) Report() ridership.CleanReport { return d.report }

// Source names the loader that produced the raw batch, or "" for none.
func (d *Dataset) Source() string { return d.source }

func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

func (d *Dataset) Len() int { return d.records.Len() }

// Latest returns the newest record timestamp.
func (d *Dataset) Latest() (time.Time, bool) { return d.records.Latest() }

// Earliest returns the oldest record timestamp, or false when empty.
func (d *Dataset) Earliest() (time.Time, bool) { return d.records.Earliest() }

// DefaultWindow is the calendar day of the newest record.
func (d *Dataset) DefaultWindow() ridership.Window { return d.records.DefaultWindow() }
