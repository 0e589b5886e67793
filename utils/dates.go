package utils

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate accepts an RFC3339 timestamp or a YYYY-MM-DD date (interpreted as UTC midnight).
// The second return value reports whether the input was date-only.
func ParseDate(value string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", value)
}

// ParseRangeEnd parses the end of a date range. A date-only value covers
// the whole day, so the returned bound is the last instant of that day.
func ParseRangeEnd(value string) (time.Time, error) {
	t, dateOnly, err := ParseDate(value)
	if err != nil {
		return time.Time{}, err
	}
	if dateOnly {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
