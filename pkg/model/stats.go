package model

import (
	"sort"
	"strings"
)

// Stats is the run summary: a mapping from stat key to count. Sub-category
// keys ("finished.new") are rolled up into parent totals ("finished") by an
// explicit Rollup call at pass boundaries, not incrementally.
type Stats map[string]int

// statKeys is the closed set of keys a run can produce. NewStats pre-seeds
// all of them so summaries never depend on which passes happened to fire.
var statKeys = []string{
	"all",
	"invalid.nottrial",
	"invalid.ioerror",
	"invalid",
	"valid",
	"finished.old",
	"finished.new",
	"finished.wrong",
	"finished",
	"skipped",
	"submitted.new",
	"submitted.resumed",
	"submitted",
	"unprocessed",
}

// NewStats returns a Stats with every known key present at zero.
func NewStats() Stats {
	s := make(Stats, len(statKeys))
	for _, k := range statKeys {
		s[k] = 0
	}
	return s
}

// Inc increments the count for key.
func (s Stats) Inc(key string) {
	s[key]++
}

// Rollup sets s[parent] to the sum of all "parent.*" sub-category counts.
func (s Stats) Rollup(parent string) {
	prefix := parent + "."
	total := 0
	for k, v := range s {
		if strings.HasPrefix(k, prefix) {
			total += v
		}
	}
	s[parent] = total
}

// Keys returns the stat keys in a stable order, known keys first.
func (s Stats) Keys() []string {
	seen := make(map[string]bool, len(statKeys))
	keys := make([]string, 0, len(s))
	for _, k := range statKeys {
		if _, ok := s[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var extra []string
	for k := range s {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
