// services/calendar/availability.go
package calendar

import (
	"context"
	"fmt"
	"time"

	"moveline/models"
	"moveline/services/validation"
)

// BookingLookup returns the bookings already taken on a day.
type BookingLookup interface {
	BookingsOn(ctx context.Context, day time.Time) ([]models.Record, error)
}

// Calendar decides whether a requested start fits the crew schedule and
// proposes alternatives when it does not.
type Calendar struct {
	bookings        BookingLookup
	StartHour       int
	EndHour         int
	JobHours        int
	MaxAlternatives int
	SearchDays      int
}

func New(bookings BookingLookup) *Calendar {
	return &Calendar{
		bookings:        bookings,
		StartHour:       8,
		EndHour:         18,
		JobHours:        3,
		MaxAlternatives: 3,
		SearchDays:      7,
	}
}

// Availability is the answer for one requested slot.
type Availability struct {
	Available    bool
	Requested    models.Slot
	Alternatives []models.Slot
}

// Check looks up bookings on day and tests the requested start hour. When it
// is taken or outside working hours, up to MaxAlternatives free slots are
// returned: later the same day first, then the following SearchDays days.
func (c *Calendar) Check(ctx context.Context, day time.Time, pref validation.TimePreference) (Availability, error) {
	requested := c.slot(day, pref.Hour)
	requested.Label = pref.Label

	booked, err := c.bookings.BookingsOn(ctx, day)
	if err != nil {
		return Availability{}, fmt.Errorf("Check: %w", err)
	}
	free := computeContinuousIntervals(interval{c.StartHour, c.EndHour}, bookedIntervals(booked, c.JobHours))
	if fits(free, pref.Hour, c.JobHours) {
		return Availability{Available: true, Requested: requested}, nil
	}

	alts := c.alternatives(day, free, morningTaken(booked), nil)
	for offset := 1; offset <= c.SearchDays && len(alts) < c.MaxAlternatives; offset++ {
		next := day.AddDate(0, 0, offset)
		nextBooked, err := c.bookings.BookingsOn(ctx, next)
		if err != nil {
			return Availability{}, fmt.Errorf("Check: %w", err)
		}
		nextFree := computeContinuousIntervals(interval{c.StartHour, c.EndHour}, bookedIntervals(nextBooked, c.JobHours))
		alts = c.alternatives(next, nextFree, false, alts)
	}
	return Availability{Requested: requested, Alternatives: alts}, nil
}

func (c *Calendar) alternatives(day time.Time, free []interval, afternoonFirst bool, acc []models.Slot) []models.Slot {
	start := c.StartHour
	if afternoonFirst && start < 13 {
		start = 13
	}
	for h := start; h+c.JobHours <= c.EndHour && len(acc) < c.MaxAlternatives; h++ {
		if fits(free, h, c.JobHours) {
			acc = append(acc, c.slot(day, h))
		}
	}
	return acc
}

func (c *Calendar) slot(day time.Time, hour int) models.Slot {
	return models.Slot{
		Date:   day.Format("2006-01-02"),
		Hour:   hour,
		Label:  validation.HourLabel(hour),
		Window: WindowLabel(hour),
	}
}

// interval is a half-open range of hours.
type interval struct {
	Start int
	End   int
}

func bookedIntervals(records []models.Record, jobHours int) []interval {
	out := make([]interval, 0, len(records))
	for _, r := range records {
		h := startHour(r.MoveTime)
		out = append(out, interval{Start: h, End: h + jobHours})
	}
	return out
}

func startHour(moveTime string) int {
	if p, ok := validation.ParseTimePreference(moveTime); ok {
		return p.Hour
	}
	return validation.FlexibleHour
}

func morningTaken(records []models.Record) bool {
	for _, r := range records {
		if startHour(r.MoveTime) < 12 {
			return true
		}
	}
	return false
}

// computeContinuousIntervals subtracts blocked intervals from working hours.
func computeContinuousIntervals(working interval, blocked []interval) []interval {
	available := []interval{working}
	for _, block := range blocked {
		var updated []interval
		for _, iv := range available {
			if block.End <= iv.Start || block.Start >= iv.End {
				updated = append(updated, iv)
				continue
			}
			if block.Start > iv.Start {
				updated = append(updated, interval{Start: iv.Start, End: block.Start})
			}
			if block.End < iv.End {
				updated = append(updated, interval{Start: block.End, End: iv.End})
			}
		}
		available = updated
	}
	return available
}

func fits(free []interval, start, hours int) bool {
	for _, iv := range free {
		if start >= iv.Start && start+hours <= iv.End {
			return true
		}
	}
	return false
}

// WindowLabel is the arrival window promised for a start hour: one hour in
// the morning, two hours from noon on.
func WindowLabel(hour int) string {
	if hour < 12 {
		return fmt.Sprintf("%d to %s", hour, validation.HourLabel(hour+1))
	}
	return fmt.Sprintf("%s to %s", twelveHour(hour), validation.HourLabel(hour+2))
}

func twelveHour(h int) string {
	if h > 12 {
		h -= 12
	}
	return fmt.Sprint(h)
}
