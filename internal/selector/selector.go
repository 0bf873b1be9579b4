// Package selector parses episode-range expressions like "1-3,5,7-9".
package selector

import (
	"sort"
	"strconv"
	"strings"
)

// Parse turns a comma-separated selection expression into an ascending,
// deduplicated list of episode numbers. Tokens are single non-negative
// integers or "a-b" pairs; reversed bounds ("3-1") are tolerated.
//
// This is a best-effort parse: malformed tokens are skipped, never reported.
// An empty or all-invalid expression yields an empty list, which callers
// treat as "nothing to do".
func Parse(expr string) []int {
	chosen := make(map[int]struct{})

	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			// Bounds are not trimmed: "1 - 3" is malformed, only the token
			// as a whole may carry surrounding whitespace.
			bounds := strings.SplitN(part, "-", 2)
			a, okA := parseUint(bounds[0])
			b, okB := parseUint(bounds[1])
			if !okA || !okB {
				continue
			}
			if a > b {
				a, b = b, a
			}
			for n := a; n <= b; n++ {
				chosen[n] = struct{}{}
			}
		} else if n, ok := parseUint(part); ok {
			chosen[n] = struct{}{}
		}
	}

	selected := make([]int, 0, len(chosen))
	for n := range chosen {
		selected = append(selected, n)
	}
	sort.Ints(selected)
	return selected
}

// parseUint accepts plain digit runs only; signs, spaces and decimals all
// disqualify a token.
func parseUint(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
