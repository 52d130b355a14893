package ridership

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// WindowTimestampLayout is the layout window bounds are reported in.
const WindowTimestampLayout = "2006-01-02T15:04:05"

var boundLayouts = []string{WindowTimestampLayout, "2006-01-02T15:04", time.RFC3339}

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// IsZero reports whether the window is unset.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Validate rejects windows that end before they start.
func (w Window) Validate() error {
	if w.End.Before(w.Start) {
		return fmt.Errorf("window end %s is before start %s", w.End.Format(time.DateOnly), w.Start.Format(time.DateOnly))
	}
	return nil
}

// DayWindow is the calendar day containing t: midnight to the next midnight.
func DayWindow(t time.Time) Window {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// parseBound parses a window bound in loc. dateOnly reports whether the
// value named a calendar day rather than an instant.
func parseBound(name, v string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	if t, err := time.ParseInLocation(time.DateOnly, v, loc); err == nil {
		return t, true, nil
	}
	for _, layout := range boundLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, false, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS", name, v)
}

// ParseWindow builds a window from user supplied bounds.
//
// Both empty yields the zero window, which callers treat as the default.
// A start alone selects that day. An end date names the last day included;
// an end timestamp is exclusive.
func ParseWindow(startRaw, endRaw string, loc *time.Location) (Window, error) {
	startRaw, endRaw = strings.TrimSpace(startRaw), strings.TrimSpace(endRaw)
	if startRaw == "" && endRaw == "" {
		return Window{}, nil
	}
	if startRaw == "" {
		return Window{}, errors.New("start is required when end is set")
	}
	if loc == nil {
		loc = time.UTC
	}

	start, _, err := parseBound("start", startRaw, loc)
	if err != nil {
		return Window{}, err
	}
	if endRaw == "" {
		return DayWindow(start), nil
	}
	end, dateOnly, err := parseBound("end", endRaw, loc)
	if err != nil {
		return Window{}, err
	}
	if dateOnly {
		end = end.AddDate(0, 0, 1)
	}
	w := Window{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Latest returns the most recent timestamp, or false for an empty set.
func (r Records) Latest() (time.Time, bool) {
	var latest time.Time
	for i, rec := range r.Rows {
		if i == 0 || rec.Timestamp.After(latest) {
			latest = rec.Timestamp
		}
	}
	return latest, len(r.Rows) > 0
}

// Earliest returns the oldest timestamp, or false for an empty set.
func (r Records) Earliest() (time.Time, bool) {
	var earliest time.Time
	for i, rec := range r.Rows {
		if i == 0 || rec.Timestamp.Before(earliest) {
			earliest = rec.Timestamp
		}
	}
	return earliest, len(r.Rows) > 0
}

// DefaultWindow is the calendar day of the most recent record. An empty set
// yields the zero window.
func (r Records) DefaultWindow() Window {
	latest, ok := r.Latest()
	if !ok {
		return Window{}
	}
	return DayWindow(latest)
}

// Filter returns the records inside w in a newly allocated set.
func (r Records) Filter(w Window) Records {
	out := Records{Columns: r.Columns, Rows: make([]CleanedRecord, 0)}
	for _, rec := range r.Rows {
		if w.Contains(rec.Timestamp) {
			out.Rows = append(out.Rows, rec)
		}
	}
	return out
}
