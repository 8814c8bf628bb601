// Package strings parses comma-separated settings such as broker and origin
// lists.
package strings

import (
	"strings"
)

// SplitList splits raw on commas, trims each element, and drops empties and
// duplicates. Order is preserved. It returns nil when nothing remains.
func SplitList(raw string) []string {
	return dedupe(strings.Split(raw, ","), false)
}

// SplitListLower is SplitList with case folding, for case-insensitive values
// such as origins.
func SplitListLower(raw string) []string {
	return dedupe(strings.Split(raw, ","), true)
}

func dedupe(values []string, fold bool) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if fold {
			v = strings.ToLower(v)
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
