package util

import (
	"strings"
	"time"
)

// SheetTimeLayout mirrors how lt-LT renders a date-time.
const SheetTimeLayout = "2006-01-02 15:04:05"

func NowISO() string {
	return time.Now().Format(time.RFC3339)
}

// LocalTimestamp formats t in loc; a nil loc means UTC.
func LocalTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(SheetTimeLayout)
}

func NormalizeBool(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "taip", "yes", "true", "1", "y", "on":
		return true
	default:
		return false
	}
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
