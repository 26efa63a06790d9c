package persistence

import (
	"context"
	"errors"
	"strconv"
	"time"

	"moveline/models"
	"moveline/services/validation"
)

// ErrNotFound is returned when no customer or booking matches a lookup.
var ErrNotFound = errors.New("record not found")

// Recorder is the durable home of bookings, partial leads, customers and the
// call log. Records are append-only; the only in-place edit is the SMS
// address update of a caller's latest booking.
type Recorder interface {
	AppendBooking(ctx context.Context, r models.Record) error
	AppendPartialLead(ctx context.Context, r models.Record) error
	LogCall(ctx context.Context, entry models.CallLog) error
	FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error)
	SaveCustomer(ctx context.Context, c models.Customer) error
	BookingsOn(ctx context.Context, day time.Time) ([]models.Record, error)
	CountWeekBookings(ctx context.Context, weekStart time.Time) (int, error)
	UpdateLatestBookingAddresses(ctx context.Context, phone, pickup, dropoff string) (*models.Record, error)
}

// DateLayout is the persisted form of a move date.
const DateLayout = "2006-01-02"

// WeekStart returns midnight of the Monday on or before day.
func WeekStart(day time.Time) time.Time {
	y, m, d := day.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	offset := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}

// inWeek reports whether moveDate (YYYY-MM-DD) falls in the seven days from weekStart.
func inWeek(moveDate string, weekStart time.Time) bool {
	d, err := time.ParseInLocation(DateLayout, moveDate, weekStart.Location())
	if err != nil {
		return false
	}
	return !d.Before(weekStart) && d.Before(weekStart.AddDate(0, 0, 7))
}

// PhoneKey is the canonical form phones are stored and matched under.
func PhoneKey(phone string) string {
	return validation.FormatPhone(phone)
}

// NewRecord flattens a session into a record row. The estimate columns stay
// empty when no estimate was produced.
func NewRecord(id string, status models.RecordStatus, s *models.Session, now time.Time) models.Record {
	d := s.Data
	r := models.Record{
		ID:             id,
		CreatedAt:      now,
		Status:         status,
		CallSID:        s.ID,
		Name:           d.Name,
		Phone:          PhoneKey(d.Phone),
		Email:          d.Email,
		MoveType:       d.MoveType.Label(),
		PropertyType:   string(d.PropertyType),
		PickupAddress:  d.Pickup.String(),
		PickupType:     d.PickupType,
		DropoffAddress: d.Dropoff.String(),
		DropoffType:    d.DropoffType,
		MoveDate:       d.MoveDate,
		MoveTime:       d.MoveTime,
		SpecialItems:   d.SpecialItems,
		Outcome:        string(s.Outcome),
	}
	if d.PickupRooms > 0 {
		r.PickupRooms = strconv.Itoa(d.PickupRooms)
	}
	if d.DropoffRooms > 0 {
		r.DropoffRooms = strconv.Itoa(d.DropoffRooms)
	}
	if d.Stairs != nil {
		r.Stairs = strconv.Itoa(*d.Stairs)
	}
	if d.Packing != nil {
		r.Packing = yesNo(*d.Packing)
	}
	if d.DistanceMiles > 0 {
		r.DistanceMiles = money(d.DistanceMiles)
	}
	if e := s.Estimate; e != nil {
		r.Movers = strconv.Itoa(e.Movers)
		r.EstimatedHours = strconv.FormatFloat(e.EstimatedHours, 'f', -1, 64)
		r.HourlyRate = money(e.HourlyRate)
		r.BasePrice = money(e.BasePrice)
		r.MileageCost = money(e.MileageSurcharge)
		r.PackingCost = money(e.PackingCost)
		r.TotalEstimate = money(e.Total)
	}
	return r
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
