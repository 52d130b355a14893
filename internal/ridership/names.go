package ridership

import (
	"regexp"
	"slices"
	"strings"
)

// TramLine is the line label given to Roosevelt Island Tram complexes.
const TramLine = "TRAM"

const tramIDPrefix = "TRAM"

var (
	parenGroup   = regexp.MustCompile(`\(([^()]*)\)`)
	parenSegment = regexp.MustCompile(`\s*\([^()]*\)`)
)

// ExtractLines returns the deduplicated line codes listed in every
// parenthesized group of a station complex name, sorted ascending.
//
//	ExtractLines("Times Sq-42 St (1,2,3,7,S)") // [1 2 3 7 S]
//	ExtractLines("Rockefeller Ctr")            // []
func ExtractLines(rawName string) []string {
	lines := []string{}
	for _, m := range parenGroup.FindAllStringSubmatch(rawName, -1) {
		for _, code := range strings.Split(m[1], ",") {
			code = strings.TrimSpace(code)
			if code == "" || slices.Contains(lines, code) {
				continue
			}
			lines = append(lines, code)
		}
	}
	slices.Sort(lines)
	return lines
}

// FormatDisplayName strips every parenthesized segment, along with the
// whitespace in front of it, and trims the result.
func FormatDisplayName(rawName string) string {
	return strings.TrimSpace(parenSegment.ReplaceAllString(rawName, ""))
}

// ResolveLines picks the line set for a complex. Tram complexes carry station
// codes rather than lines in their names, so they are resolved by id.
func ResolveLines(complexID, rawName string) []string {
	if strings.HasPrefix(strings.ToUpper(complexID), tramIDPrefix) {
		return []string{TramLine}
	}
	return ExtractLines(rawName)
}

// JoinLines renders a line set the way station tables show it: "1, 2, 3".
func JoinLines(lines []string) string {
	return strings.Join(lines, ", ")
}
