package utils

import "time"

// Now returns the current time in UTC timezone
func Now() time.Time {
	return time.Now().UTC()
}

// FormatISO8601 formats a time.Time to ISO8601 format in UTC
func FormatISO8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// StartOfDay truncates a time to midnight UTC
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysAgo returns midnight UTC n days before now
func DaysAgo(n int) time.Time {
	return StartOfDay(Now().AddDate(0, 0, -n))
}
