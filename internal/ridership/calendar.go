package ridership

import (
	"fmt"
	"time"
)

// Days is the full day-of-week domain in chart order.
var Days = []string{
	time.Monday.String(),
	time.Tuesday.String(),
	time.Wednesday.String(),
	time.Thursday.String(),
	time.Friday.String(),
	time.Saturday.String(),
	time.Sunday.String(),
}

// TimeBlocks is the fixed domain of eight three-hour windows.
var TimeBlocks = func() []string {
	blocks := make([]string, 0, 8)
	for h := 0; h < 24; h += 3 {
		blocks = append(blocks, TimeBlockFor(h))
	}
	return blocks
}()

// TimeBlockFor returns the "HH:00-HH:00" window containing hour.
func TimeBlockFor(hour int) string {
	start := hour / 3 * 3
	return fmt.Sprintf("%02d:00-%02d:00", start, start+3)
}

// FormatPeakHour renders an hour of day as a 12-hour label without a leading
// zero. Midnight is "0:00 AM" and noon is "12:00 PM".
func FormatPeakHour(hour int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if hour == 12 {
		h = 12
	}
	return fmt.Sprintf("%d:00 %s", h, suffix)
}

// DefaultLineColor is used for ambiguous, multi-character or unknown lines.
const DefaultLineColor = "#000000"

// LineColors maps single-character line codes to their trunk color.
var LineColors = map[string]string{
	"1": "#EE352E", "2": "#EE352E", "3": "#EE352E",
	"4": "#00933C", "5": "#00933C", "6": "#00933C",
	"7": "#B933AD",
	"A": "#0039A6", "C": "#0039A6", "E": "#0039A6",
	"B": "#FF6319", "D": "#FF6319", "F": "#FF6319", "M": "#FF6319",
	"G": "#6CBE45",
	"J": "#996633", "Z": "#996633",
	"L": "#A7A9AC",
	"N": "#FCCC0A", "Q": "#FCCC0A", "R": "#FCCC0A", "W": "#FCCC0A",
	"S": "#808183",
}

// LineColor resolves the display color for a primary line.
func LineColor(primaryLine string) string {
	if len(primaryLine) != 1 {
		return DefaultLineColor
	}
	if c, ok := LineColors[primaryLine]; ok {
		return c
	}
	return DefaultLineColor
}

// DefaultExcludedStations are display names dropped by the cleaner.
var DefaultExcludedStations = []string{
	"Aqueduct Racetrack",
	"Beach 105 St",
}

// NonLineLabels leak into line sets from malformed complex names and are never
// treated as lines.
var NonLineLabels = []string{TramLine, "R042", "R044"}
