package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ItemsAll selects every entry
const ItemsAll = "all"

// ParseItems turns a list like "1,3,5-7" into sorted, distinct 1-based
// positions within 1..max. An empty spec or "all" selects everything.
func ParseItems(spec string, max int) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.EqualFold(spec, ItemsAll) {
		out := make([]int, max)
		for i := range out {
			out[i] = i + 1
		}
		return out, nil
	}

	seen := make(map[int]bool)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, err := parseRange(part)
		if err != nil {
			return nil, err
		}
		if lo < 1 || hi > max {
			return nil, fmt.Errorf("item %q out of range 1-%d", part, max)
		}
		for p := lo; p <= hi; p++ {
			seen[p] = true
		}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("no items in %q", spec)
	}
	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out, nil
}

func parseRange(part string) (int, int, error) {
	bounds := strings.SplitN(part, "-", 2)
	lo, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid item %q", part)
	}
	if len(bounds) == 1 {
		return lo, lo, nil
	}
	hi, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid item range %q", part)
	}
	if hi < lo {
		return 0, 0, fmt.Errorf("item range %q is reversed", part)
	}
	return lo, hi, nil
}
