package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moveline/models"
	"moveline/services/validation"
)

type fakeBookings struct {
	byDay map[string][]models.Record
	err   error
}

func (f *fakeBookings) BookingsOn(_ context.Context, day time.Time) ([]models.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byDay[day.Format("2006-01-02")], nil
}

var moveDay = time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC)

func booked(times ...string) []models.Record {
	out := make([]models.Record, 0, len(times))
	for _, t := range times {
		out = append(out, models.Record{MoveDate: "2026-10-20", MoveTime: t})
	}
	return out
}

func hours(slots []models.Slot) []int {
	out := make([]int, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Hour)
	}
	return out
}

func TestCheck_Available(t *testing.T) {
	cal := New(&fakeBookings{})
	av, err := cal.Check(context.Background(), moveDay, validation.TimePreference{Label: "Afternoon", Hour: 13})
	require.NoError(t, err)
	assert.True(t, av.Available)
	assert.Empty(t, av.Alternatives)
	assert.Equal(t, "2026-10-20", av.Requested.Date)
	assert.Equal(t, "Afternoon", av.Requested.Label)
	assert.Equal(t, "1 to 3 PM", av.Requested.Window)
}

func TestCheck_MorningTakenOffersAfternoon(t *testing.T) {
	cal := New(&fakeBookings{byDay: map[string][]models.Record{"2026-10-20": booked("Morning")}})
	av, err := cal.Check(context.Background(), moveDay, validation.TimePreference{Label: "Morning", Hour: 8})
	require.NoError(t, err)
	assert.False(t, av.Available)
	assert.Equal(t, []int{13, 14, 15}, hours(av.Alternatives))
	assert.Equal(t, "2026-10-20", av.Alternatives[0].Date)
}

func TestCheck_EveningDoesNotFitJobLength(t *testing.T) {
	cal := New(&fakeBookings{})
	av, err := cal.Check(context.Background(), moveDay, validation.TimePreference{Label: "Evening", Hour: 16})
	require.NoError(t, err)
	assert.False(t, av.Available)
	assert.Equal(t, []int{8, 9, 10}, hours(av.Alternatives))
}

func TestCheck_FullDayRollsToNextDay(t *testing.T) {
	cal := New(&fakeBookings{byDay: map[string][]models.Record{
		"2026-10-20": booked("Morning", "11 AM", "2 PM"),
	}})
	av, err := cal.Check(context.Background(), moveDay, validation.TimePreference{Label: "11 AM", Hour: 11})
	require.NoError(t, err)
	assert.False(t, av.Available)
	require.Len(t, av.Alternatives, 3)
	assert.Equal(t, "2026-10-21", av.Alternatives[0].Date)
	assert.Equal(t, "8 AM", av.Alternatives[0].Label)
	assert.Equal(t, "8 to 9 AM", av.Alternatives[0].Window)
}

func TestCheck_LookupError(t *testing.T) {
	cal := New(&fakeBookings{err: errors.New("sheet unavailable")})
	_, err := cal.Check(context.Background(), moveDay, validation.TimePreference{Label: "Morning", Hour: 8})
	assert.Error(t, err)
}

func TestWindowLabel(t *testing.T) {
	assert.Equal(t, "9 to 10 AM", WindowLabel(9))
	assert.Equal(t, "12 to 2 PM", WindowLabel(12))
	assert.Equal(t, "3 to 5 PM", WindowLabel(15))
}

func TestFormatAlternatives(t *testing.T) {
	msg := FormatAlternatives([]models.Slot{
		{Date: "2026-10-21", Hour: 8, Label: "8 AM", Window: "8 to 9 AM"},
		{Date: "2026-10-21", Hour: 9, Label: "9 AM", Window: "9 to 10 AM"},
	}, "(281) 743-4503")
	assert.Contains(t, msg, "first, Wednesday, October 21 at 8 AM")
	assert.Contains(t, msg, "second, Wednesday, October 21 at 9 AM")
	assert.Contains(t, msg, "Say first, or second.")

	assert.Contains(t, FormatAlternatives(nil, "(281) 743-4503"), "(281) 743-4503")
}
