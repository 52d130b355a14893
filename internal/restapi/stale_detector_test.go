package restapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStaleDetector(t *testing.T) {
	latest := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		threshold time.Duration
		now       time.Time
		ok        bool
		want      bool
	}{
		{"fresh", 14 * 24 * time.Hour, latest.AddDate(0, 0, 3), true, false},
		{"exactly at threshold", 24 * time.Hour, latest.Add(24 * time.Hour), true, false},
		{"past threshold", 24 * time.Hour, latest.Add(25 * time.Hour), true, true},
		{"disabled", 0, latest.AddDate(1, 0, 0), true, false},
		{"no records", time.Hour, latest.AddDate(1, 0, 0), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewStaleDetector().WithThreshold(tt.threshold)
			assert.Equal(t, tt.want, d.Check(latest, tt.ok, tt.now))
		})
	}
}

func TestStaleDetector_DefaultsToTwoWeeks(t *testing.T) {
	d := NewStaleDetector()
	latest := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

	assert.False(t, d.Check(latest, true, latest.AddDate(0, 0, 14)))
	assert.True(t, d.Check(latest, true, latest.AddDate(0, 0, 15)))
	assert.Equal(t, 36*time.Hour, d.Age(latest, latest.Add(36*time.Hour)))
}
