// Package extract turns free-form model completions into typed records.
//
// The pipeline is Sanitize, ParseArray, a shape-specific normalizer, and a
// single combinator that substitutes a deterministic default whenever an
// earlier stage fails. Callers of Sections and Questions never see an error.
// Every function here is pure and safe for concurrent use.
package extract

import (
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?i:json)?(.*?)```")

// Sanitize returns the substring of raw most likely to hold a JSON array.
//
// A fenced code block wins over bare brackets. When neither is present the
// trimmed input is returned as-is and the parse stage will reject it.
func Sanitize(raw string) string {
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}

	trimmed := strings.TrimSpace(raw)
	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}
	return trimmed
}
