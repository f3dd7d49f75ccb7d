package game

import (
	"strings"
	"time"
)

// startLayouts covers the upstream variants: full RFC3339 and minute precision with or
// without an explicit offset.
var startLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z",
	"2006-01-02T15:04",
}

// ParseStart parses an upstream start timestamp. ok is false for empty or unrecognised input.
func ParseStart(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
