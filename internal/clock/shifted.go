package clock

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// ShiftedClock runs at wall-clock speed from a configured starting instant.
// It lets the service answer "now" as of the day an archived export was
// taken, so the health check does not flag it as stale.
type ShiftedClock struct {
	offset time.Duration
}

var shiftedLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ErrNoStartTime is returned by NewShiftedClock when neither source is set.
var ErrNoStartTime = errors.New("no start time configured")

// NewShiftedClock reads the starting instant from the environment variable
// envVar, or failing that from the file at filePath. Values without a zone
// offset are read in loc.
func NewShiftedClock(envVar, filePath string, loc *time.Location) (*ShiftedClock, error) {
	raw, source, err := readStartTime(envVar, filePath)
	if err != nil {
		return nil, err
	}
	start, err := parseStartTime(raw, loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return &ShiftedClock{offset: time.Until(start)}, nil
}

// FromEnvironment returns a ShiftedClock when envVar or filePath provides a
// start time and RealClock when neither does.
func FromEnvironment(envVar, filePath string, loc *time.Location) (Clock, error) {
	c, err := NewShiftedClock(envVar, filePath, loc)
	if errors.Is(err, ErrNoStartTime) {
		return RealClock{}, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func readStartTime(envVar, filePath string) (string, string, error) {
	if envVar != "" {
		if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
			return v, "environment variable " + envVar, nil
		}
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", "", fmt.Errorf("read start time file: %w", err)
		}
		return strings.TrimSpace(string(data)), "file " + filePath, nil
	}
	return "", "", ErrNoStartTime
}

func parseStartTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if loc == nil {
		return time.Time{}, fmt.Errorf("start time %q has no zone offset and no timezone is configured", s)
	}
	for _, layout := range shiftedLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse start time %q: expected RFC3339, YYYY-MM-DD HH:MM:SS, YYYY-MM-DDTHH:MM:SS or YYYY-MM-DD", s)
}

// Now returns the system time moved by the configured offset.
func (c *ShiftedClock) Now() time.Time {
	return time.Now().Add(c.offset)
}

func (c *ShiftedClock) NowUnixMilli() int64 {
	return c.Now().UnixMilli()
}
