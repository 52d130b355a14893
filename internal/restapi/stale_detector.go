package restapi

import (
	"time"
)

// StaleDetector decides whether the newest ridership record is too old for
// the dashboard to be trusted.
type StaleDetector struct {
	threshold time.Duration
}

func NewStaleDetector() *StaleDetector {
	return &StaleDetector{
		threshold: 14 * 24 * time.Hour,
	}
}

// WithThreshold sets the maximum age. Zero or less disables the check.
func (d *StaleDetector) WithThreshold(threshold time.Duration) *StaleDetector {
	d.threshold = threshold
	return d
}

// Check reports whether latest is older than the threshold at currentTime.
// A dataset without records is never stale; it is empty.
func (d *StaleDetector) Check(latest time.Time, ok bool, currentTime time.Time) bool {
	if !ok || d.threshold <= 0 {
		return false
	}
	return d.Age(latest, currentTime) > d.threshold
}

func (d *StaleDetector) Age(latest time.Time, currentTime time.Time) time.Duration {
	return currentTime.Sub(latest)
}
