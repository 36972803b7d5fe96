package common

import (
	"strings"
	"time"
)

// SplitList splits a comma-separated list, trimming whitespace and dropping
// empty items. An empty input yields nil.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// MinDuration returns the smallest positive duration, or 0 when none is
// positive.
func MinDuration(ds ...time.Duration) time.Duration {
	var min time.Duration
	for _, d := range ds {
		if d > 0 && (min == 0 || d < min) {
			min = d
		}
	}
	return min
}
