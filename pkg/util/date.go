package util

import (
	"strconv"
	"time"
)

var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTime tries RFC3339, ISO without zone, date-only and unix seconds.
// Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// MonthDay renders a date as M/D without zero padding, e.g. "3/7".
func MonthDay(t time.Time) string {
	return strconv.Itoa(int(t.Month())) + "/" + strconv.Itoa(t.Day())
}

// BucketStart truncates t to the start of its window; a non-positive window returns t as is.
func BucketStart(t time.Time, window time.Duration) time.Time {
	if window <= 0 {
		return t
	}
	return t.UTC().Truncate(window)
}
