package persistence

import (
	"context"
	"time"

	"moveline/models"

	"go.uber.org/zap"
)

// Fanout writes to a primary backend and mirrors every write to the
// secondaries. Reads and errors come from the primary only; a failed mirror
// write is logged.
type Fanout struct {
	primary     Recorder
	secondaries []Recorder
	logger      *zap.Logger
}

func NewFanout(logger *zap.Logger, primary Recorder, secondaries ...Recorder) *Fanout {
	return &Fanout{primary: primary, secondaries: secondaries, logger: logger}
}

func (f *Fanout) mirror(op string, write func(Recorder) error) {
	for i, r := range f.secondaries {
		if err := write(r); err != nil {
			f.logger.Error("Mirror write failed", zap.String("op", op), zap.Int("backend", i), zap.Error(err))
		}
	}
}

func (f *Fanout) AppendBooking(ctx context.Context, r models.Record) error {
	if err := f.primary.AppendBooking(ctx, r); err != nil {
		return err
	}
	f.mirror("AppendBooking", func(b Recorder) error { return b.AppendBooking(ctx, r) })
	return nil
}

func (f *Fanout) AppendPartialLead(ctx context.Context, r models.Record) error {
	if err := f.primary.AppendPartialLead(ctx, r); err != nil {
		return err
	}
	f.mirror("AppendPartialLead", func(b Recorder) error { return b.AppendPartialLead(ctx, r) })
	return nil
}

func (f *Fanout) LogCall(ctx context.Context, entry models.CallLog) error {
	if err := f.primary.LogCall(ctx, entry); err != nil {
		return err
	}
	f.mirror("LogCall", func(b Recorder) error { return b.LogCall(ctx, entry) })
	return nil
}

func (f *Fanout) SaveCustomer(ctx context.Context, c models.Customer) error {
	if err := f.primary.SaveCustomer(ctx, c); err != nil {
		return err
	}
	f.mirror("SaveCustomer", func(b Recorder) error { return b.SaveCustomer(ctx, c) })
	return nil
}

func (f *Fanout) UpdateLatestBookingAddresses(ctx context.Context, phone, pickup, dropoff string) (*models.Record, error) {
	rec, err := f.primary.UpdateLatestBookingAddresses(ctx, phone, pickup, dropoff)
	if err != nil {
		return nil, err
	}
	f.mirror("UpdateLatestBookingAddresses", func(b Recorder) error {
		_, err := b.UpdateLatestBookingAddresses(ctx, phone, pickup, dropoff)
		return err
	})
	return rec, nil
}

func (f *Fanout) FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	return f.primary.FindCustomerByPhone(ctx, phone)
}

func (f *Fanout) BookingsOn(ctx context.Context, day time.Time) ([]models.Record, error) {
	return f.primary.BookingsOn(ctx, day)
}

func (f *Fanout) CountWeekBookings(ctx context.Context, weekStart time.Time) (int, error) {
	return f.primary.CountWeekBookings(ctx, weekStart)
}
