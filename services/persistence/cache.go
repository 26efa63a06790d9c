package persistence

import (
	"context"
	"encoding/json"
	"time"

	"moveline/models"
	"moveline/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CachedRecorder caches day lookups in Redis. Writes that can change a day's
// bookings drop that day's entry. Cache failures fall through to the backend.
type CachedRecorder struct {
	Recorder
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedRecorder(inner Recorder, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedRecorder {
	if ttl <= 0 {
		ttl = utils.BookingsDayTTL
	}
	return &CachedRecorder{Recorder: inner, client: client, ttl: ttl, logger: logger}
}

func dayKey(date string) string {
	return utils.BookingsDayPrefix + date
}

func (c *CachedRecorder) BookingsOn(ctx context.Context, day time.Time) ([]models.Record, error) {
	key := dayKey(day.Format(DateLayout))
	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached []models.Record
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn("Discarding unreadable bookings cache entry", zap.String("key", key))
	} else if err != redis.Nil {
		c.logger.Warn("Bookings cache read failed", zap.String("key", key), zap.Error(err))
	}

	records, err := c.Recorder.BookingsOn(ctx, day)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(records); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("Bookings cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return records, nil
}

func (c *CachedRecorder) invalidate(ctx context.Context, date string) {
	if date == "" {
		return
	}
	if err := c.client.Del(ctx, dayKey(date)).Err(); err != nil {
		c.logger.Warn("Bookings cache invalidation failed", zap.String("date", date), zap.Error(err))
	}
}

func (c *CachedRecorder) AppendBooking(ctx context.Context, r models.Record) error {
	if err := c.Recorder.AppendBooking(ctx, r); err != nil {
		return err
	}
	c.invalidate(ctx, r.MoveDate)
	return nil
}

func (c *CachedRecorder) UpdateLatestBookingAddresses(ctx context.Context, phone, pickup, dropoff string) (*models.Record, error) {
	rec, err := c.Recorder.UpdateLatestBookingAddresses(ctx, phone, pickup, dropoff)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, rec.MoveDate)
	return rec, nil
}
