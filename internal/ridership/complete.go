package ridership

import (
	"fmt"
	"strings"
)

// Complete guarantees one row for every combination in the Cartesian product
// of domains. Missing combinations are produced by fill; rows already present
// are kept untouched, none are dropped or duplicated.
//
// Output follows domain order (first domain outermost). Rows whose key falls
// outside the domains are appended at the end in their original order.
func Complete[R any](rows []R, domains [][]string, key func(R) []string, fill func(keys []string) R) ([]R, error) {
	index := make(map[string][]R, len(rows))
	var order []string
	for _, row := range rows {
		k := key(row)
		if len(k) != len(domains) {
			return nil, fmt.Errorf("%w: key %v, %d domains", ErrDomainArity, k, len(domains))
		}
		id := joinKey(k)
		if _, seen := index[id]; !seen {
			order = append(order, id)
		}
		index[id] = append(index[id], row)
	}

	out := make([]R, 0, max(len(rows), productSize(domains)))
	used := make(map[string]bool, len(index))
	for _, combo := range cartesian(domains) {
		id := joinKey(combo)
		if existing, ok := index[id]; ok {
			out = append(out, existing...)
			used[id] = true
			continue
		}
		out = append(out, fill(combo))
	}
	for _, id := range order {
		if !used[id] {
			out = append(out, index[id]...)
		}
	}
	return out, nil
}

func joinKey(parts []string) string {
	return strings.Join(parts, "\x1f")
}

func productSize(domains [][]string) int {
	if len(domains) == 0 {
		return 0
	}
	n := 1
	for _, d := range domains {
		n *= len(d)
	}
	return n
}

func cartesian(domains [][]string) [][]string {
	if len(domains) == 0 {
		return nil
	}
	combos := [][]string{{}}
	for _, domain := range domains {
		next := make([][]string, 0, len(combos)*len(domain))
		for _, prefix := range combos {
			for _, v := range domain {
				combo := make([]string, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				next = append(next, append(combo, v))
			}
		}
		combos = next
	}
	return combos
}
