package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return v
}

func TestNextRunAt(t *testing.T) {
	tests := []struct {
		name     string
		hhmm     string
		tz       string
		from     string
		expected string
	}{
		{
			name:     "Lagos time already passed today",
			hhmm:     "08:00",
			tz:       "Africa/Lagos",
			from:     "2025-01-01T10:00:00Z",
			expected: "2025-01-02T07:00:00Z",
		},
		{
			name:     "Lagos time still ahead today",
			hhmm:     "14:30",
			tz:       "Africa/Lagos",
			from:     "2025-01-01T10:00:00Z",
			expected: "2025-01-01T13:30:00Z",
		},
		{
			name:     "exactly now is not skipped",
			hhmm:     "11:00",
			tz:       "Africa/Lagos",
			from:     "2025-01-01T10:00:00Z",
			expected: "2025-01-01T10:00:00Z",
		},
		{
			name:     "local date differs from UTC date",
			hhmm:     "09:00",
			tz:       "Asia/Tokyo",
			from:     "2025-01-01T20:00:00Z",
			expected: "2025-01-02T00:00:00Z",
		},
		{
			name:     "spring forward in New York",
			hhmm:     "08:00",
			tz:       "America/New_York",
			from:     "2025-03-08T14:00:00Z",
			expected: "2025-03-09T12:00:00Z",
		},
		{
			name:     "fall back in New York",
			hhmm:     "08:00",
			tz:       "America/New_York",
			from:     "2025-11-01T13:00:00Z",
			expected: "2025-11-02T13:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from := mustTime(t, tt.from)
			got, err := NextRunAt(tt.hhmm, tt.tz, from)
			require.NoError(t, err)
			assert.Equal(t, mustTime(t, tt.expected), got)
			assert.False(t, got.Before(from))

			loc, err := time.LoadLocation(tt.tz)
			require.NoError(t, err)
			assert.Equal(t, tt.hhmm, got.In(loc).Format("15:04"))
			assert.True(t, got.Sub(from) <= 25*time.Hour)
		})
	}
}

func TestNextRunAfter(t *testing.T) {
	tests := []struct {
		name     string
		prev     string
		hhmm     string
		tz       string
		expected string
	}{
		{
			name:     "plain day in Lagos",
			prev:     "2025-01-02T07:00:00Z",
			hhmm:     "08:00",
			tz:       "Africa/Lagos",
			expected: "2025-01-03T07:00:00Z",
		},
		{
			name:     "23 hour day across spring forward",
			prev:     "2025-03-08T13:00:00Z",
			hhmm:     "08:00",
			tz:       "America/New_York",
			expected: "2025-03-09T12:00:00Z",
		},
		{
			name:     "25 hour day across fall back",
			prev:     "2025-11-01T12:00:00Z",
			hhmm:     "08:00",
			tz:       "America/New_York",
			expected: "2025-11-02T13:00:00Z",
		},
		{
			name:     "month rollover",
			prev:     "2025-01-31T07:00:00Z",
			hhmm:     "08:00",
			tz:       "Africa/Lagos",
			expected: "2025-02-01T07:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := mustTime(t, tt.prev)
			got, err := NextRunAfter(prev, tt.hhmm, tt.tz)
			require.NoError(t, err)
			assert.Equal(t, mustTime(t, tt.expected), got)

			loc, err := time.LoadLocation(tt.tz)
			require.NoError(t, err)
			prevDate := prev.In(loc)
			nextDate := got.In(loc)
			assert.Equal(t, prevDate.AddDate(0, 0, 1).Format("2006-01-02"), nextDate.Format("2006-01-02"))
		})
	}
}

func TestNextRunAfter_IgnoresCurrentTime(t *testing.T) {
	// A sweep that runs three days late still advances by a single day.
	prev := mustTime(t, "2025-01-02T07:00:00Z")
	first, err := NextRunAfter(prev, "08:00", "Africa/Lagos")
	require.NoError(t, err)
	second, err := NextRunAfter(prev, "08:00", "Africa/Lagos")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, mustTime(t, "2025-01-03T07:00:00Z"), first)
}

func TestSnapToSlot(t *testing.T) {
	tests := []struct {
		in       string
		expected string
		wantErr  bool
	}{
		{in: "08:00", expected: "08:00"},
		{in: "08:29", expected: "08:00"},
		{in: "08:30", expected: "08:30"},
		{in: "23:59", expected: "23:30"},
		{in: "7:45", expected: "07:30"},
		{in: "24:00", wantErr: true},
		{in: "08:5", wantErr: true},
		{in: "noon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SnapToSlot(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNextRunAt_InvalidInput(t *testing.T) {
	_, err := NextRunAt("08:00", "Mars/Olympus", time.Now())
	assert.Error(t, err)

	_, err = NextRunAt("8am", "UTC", time.Now())
	assert.Error(t, err)
}

func TestLocalDate(t *testing.T) {
	ts := mustTime(t, "2025-01-01T23:30:00Z")
	assert.Equal(t, "2025-01-02", LocalDate(ts, "Africa/Lagos"))
	assert.Equal(t, "2025-01-01", LocalDate(ts, "UTC"))
	assert.Equal(t, "2025-01-01", LocalDate(ts, "not/a-zone"))
}
