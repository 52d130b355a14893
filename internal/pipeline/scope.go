package pipeline

import (
	"fmt"
	"slices"
	"strings"

	"ridership.subwaydash.org/internal/ridership"
)

// Outputs lists every derived output a run produces.
var Outputs = []string{
	ridership.OutputHourly,
	ridership.OutputWeekly,
	ridership.OutputTimeBlock,
	ridership.OutputStationStats,
	ridership.OutputBoroughStats,
	ridership.OutputLineStats,
	ridership.OutputMetrics,
	ridership.OutputStationMap,
}

// Scope names the outputs computed from the date-filtered records. All other
// outputs use the full dataset.
type Scope map[string]bool

// DefaultScope filters only the hourly trend.
func DefaultScope() Scope {
	return Scope{ridership.OutputHourly: true}
}

// FullScope filters every output.
func FullScope() Scope {
	s := Scope{}
	for _, o := range Outputs {
		s[o] = true
	}
	return s
}

// ParseScope builds a scope from output names. "all" selects every output
// and an empty list selects none.
func ParseScope(names []string) (Scope, error) {
	s := Scope{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		switch {
		case n == "":
			continue
		case n == "all":
			return FullScope(), nil
		case slices.Contains(Outputs, n):
			s[n] = true
		default:
			return nil, fmt.Errorf("unknown output %q in filter scope", n)
		}
	}
	return s, nil
}

// Filtered reports whether output uses the windowed records.
func (s Scope) Filtered(output string) bool {
	return s[output]
}

// Names returns the filtered outputs in run order.
func (s Scope) Names() []string {
	var out []string
	for _, o := range Outputs {
		if s[o] {
			out = append(out, o)
		}
	}
	return out
}
