package utils

import (
	"fmt"
	"time"
)

// All timestamps are stored as UTC "2006-01-02 15:04:05" strings so that
// string comparison in SQL matches chronological order across sqlite and
// MySQL.
const dbDateTimeLayout = "2006-01-02 15:04:05"

// NowUTC returns the current time truncated to seconds, in UTC.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// FormatDBTime formats a time for DATETIME columns.
func FormatDBTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dbDateTimeLayout)
}

// ParseDBTime parses timestamps retrieved from the database.
func ParseDBTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time string")
	}

	for _, layout := range []string{dbDateTimeLayout, time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported db time format: %s", value)
}

// StartOfDay returns the UTC midnight for the provided time.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
