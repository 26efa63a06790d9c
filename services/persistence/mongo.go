package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	recordsRepo "moveline/database/repository/records"
	"moveline/models"
)

// MongoRecorder stores everything in MongoDB through the records repository.
type MongoRecorder struct {
	repo recordsRepo.RecordRepository
}

func NewMongoRecorder(repo recordsRepo.RecordRepository) *MongoRecorder {
	return &MongoRecorder{repo: repo}
}

func notFound(err error) error {
	if errors.Is(err, recordsRepo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (m *MongoRecorder) AppendBooking(ctx context.Context, r models.Record) error {
	r.Status = models.StatusBooking
	if err := m.repo.InsertRecord(ctx, r); err != nil {
		return fmt.Errorf("AppendBooking: failed to insert booking %s: %w", r.ID, err)
	}
	return nil
}

func (m *MongoRecorder) AppendPartialLead(ctx context.Context, r models.Record) error {
	r.Status = models.StatusPartialLead
	if err := m.repo.InsertRecord(ctx, r); err != nil {
		return fmt.Errorf("AppendPartialLead: failed to insert lead %s: %w", r.ID, err)
	}
	return nil
}

func (m *MongoRecorder) LogCall(ctx context.Context, entry models.CallLog) error {
	if err := m.repo.InsertCallLog(ctx, entry); err != nil {
		return fmt.Errorf("LogCall: failed to insert call %s: %w", entry.CallSID, err)
	}
	return nil
}

func (m *MongoRecorder) FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	c, err := m.repo.FindCustomerByPhone(ctx, PhoneKey(phone))
	if err != nil {
		return nil, fmt.Errorf("FindCustomerByPhone: %w", notFound(err))
	}
	return c, nil
}

func (m *MongoRecorder) SaveCustomer(ctx context.Context, c models.Customer) error {
	c.Phone = PhoneKey(c.Phone)
	if err := m.repo.UpsertCustomer(ctx, c); err != nil {
		return fmt.Errorf("SaveCustomer: %w", err)
	}
	return nil
}

func (m *MongoRecorder) BookingsOn(ctx context.Context, day time.Time) ([]models.Record, error) {
	records, err := m.repo.FindBookingsByDate(ctx, day.Format(DateLayout))
	if err != nil {
		return nil, fmt.Errorf("BookingsOn: %w", err)
	}
	return records, nil
}

func (m *MongoRecorder) CountWeekBookings(ctx context.Context, weekStart time.Time) (int, error) {
	from := weekStart.Format(DateLayout)
	to := weekStart.AddDate(0, 0, 7).Format(DateLayout)
	n, err := m.repo.CountBookingsBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("CountWeekBookings: %w", err)
	}
	return int(n), nil
}

func (m *MongoRecorder) UpdateLatestBookingAddresses(ctx context.Context, phone, pickup, dropoff string) (*models.Record, error) {
	rec, err := m.repo.LatestBookingByPhone(ctx, PhoneKey(phone))
	if err != nil {
		return nil, fmt.Errorf("UpdateLatestBookingAddresses: %w", notFound(err))
	}
	if err := m.repo.SetAddresses(ctx, rec.ID, pickup, dropoff); err != nil {
		return nil, fmt.Errorf("UpdateLatestBookingAddresses: %w", notFound(err))
	}
	if pickup != "" {
		rec.PickupAddress = pickup
	}
	if dropoff != "" {
		rec.DropoffAddress = dropoff
	}
	return rec, nil
}
