package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNow(t *testing.T) {
	utilsTime := Now()
	standardTime := time.Now().UTC()

	// The times should be very close - within a small delta
	assert.WithinDuration(t, standardTime, utilsTime, 10*time.Millisecond)

	// Ensure the timezone is UTC
	assert.Equal(t, time.UTC, utilsTime.Location())
}

func TestFormatISO8601(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)
	input := time.Date(2024, 3, 15, 17, 30, 0, 0, loc)

	assert.Equal(t, "2024-03-15T10:30:00Z", FormatISO8601(input))
}

func TestStartOfDay(t *testing.T) {
	input := time.Date(2024, 3, 15, 17, 30, 45, 123, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), StartOfDay(input))
}

func TestDaysAgo(t *testing.T) {
	sevenDaysAgo := DaysAgo(7)
	assert.Equal(t, time.UTC, sevenDaysAgo.Location())
	assert.True(t, sevenDaysAgo.Before(Now()))
	assert.Zero(t, sevenDaysAgo.Hour())
	assert.Zero(t, sevenDaysAgo.Minute())
}
