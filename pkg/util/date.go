package util

import (
	"time"
)

const dayLayout = "2006-01-02"

// ParseBarDate parses provider date strings. Daily feeds send "2006-01-02";
// some endpoints append a midnight time component.
func ParseBarDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FormatDay renders a time as the canonical daily key.
func FormatDay(t time.Time) string {
	return t.Format(dayLayout)
}

// TruncateDay strips the time-of-day component in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
