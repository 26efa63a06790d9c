package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Friday, October 16 2026.
var refNow = time.Date(2026, time.October, 16, 10, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"today", day(2026, time.October, 16)},
		{"tomorrow please", day(2026, time.October, 17)},
		{"the day after tomorrow", day(2026, time.October, 18)},
		{"next week", day(2026, time.October, 23)},
		{"Monday", day(2026, time.October, 19)},
		{"this friday", day(2026, time.October, 23)},
		{"October 25th", day(2026, time.October, 25)},
		{"25 october", day(2026, time.October, 25)},
		{"the 5th of November", day(2026, time.November, 5)},
		{"January 5th", day(2027, time.January, 5)},
		{"March 3, 2027", day(2027, time.March, 3)},
		{"10/25", day(2026, time.October, 25)},
		{"1/5", day(2027, time.January, 5)},
		{"10/25/27", day(2027, time.October, 25)},
		{"2026-11-02", day(2026, time.November, 2)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in, refNow)
		require.NoError(t, err, "input %q", tt.in)
		assert.True(t, tt.want.Equal(got), "input %q: got %s want %s", tt.in, got, tt.want)
	}
}

func TestParseDate_Rejects(t *testing.T) {
	_, err := ParseDate("October 10, 2026", refNow)
	assert.ErrorIs(t, err, ErrDateInPast)

	_, err = ParseDate("10/01/2026", refNow)
	assert.ErrorIs(t, err, ErrDateInPast)

	for _, in := range []string{"", "banana", "february 30", "sometime soon"} {
		_, err := ParseDate(in, refNow)
		assert.ErrorIs(t, err, ErrUnparseableDate, "input %q", in)
	}
}

func TestParseTimePreference(t *testing.T) {
	tests := []struct {
		in    string
		label string
		hour  int
	}{
		{"morning", "Morning", 8},
		{"in the afternoon", "Afternoon", 13},
		{"evening works", "Evening", 16},
		{"I'm flexible", "Flexible", 10},
		{"anytime", "Flexible", 10},
		{"3 pm", "3 PM", 15},
		{"3:30 p.m.", "3 PM", 15},
		{"at 10", "10 AM", 10},
		{"at 2", "2 PM", 14},
		{"nine o'clock", "9 AM", 9},
		{"11 am", "11 AM", 11},
		{"noon", "12 PM", 12},
	}
	for _, tt := range tests {
		got, ok := ParseTimePreference(tt.in)
		require.True(t, ok, "input %q", tt.in)
		assert.Equal(t, tt.label, got.Label, "input %q", tt.in)
		assert.Equal(t, tt.hour, got.Hour, "input %q", tt.in)
	}

	_, ok := ParseTimePreference("purple")
	assert.False(t, ok)
	_, ok = ParseTimePreference("")
	assert.False(t, ok)
}

func TestFormatSpokenDate(t *testing.T) {
	assert.Equal(t, "Friday, October 23, 2026", FormatSpokenDate(day(2026, time.October, 23)))
}
