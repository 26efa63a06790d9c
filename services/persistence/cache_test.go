package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"moveline/models"
)

func newCached(t *testing.T) (*CachedRecorder, *memRecorder, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	inner := &memRecorder{}
	return NewCachedRecorder(inner, client, time.Minute, zaptest.NewLogger(t)), inner, mr
}

func TestCachedRecorder_CachesDayLookups(t *testing.T) {
	rec, inner, mr := newCached(t)
	ctx := context.Background()
	day := time.Date(2026, time.October, 21, 0, 0, 0, 0, time.UTC)
	require.NoError(t, inner.AppendBooking(ctx, booking("BOOK-1", "(281) 555-0100", "2026-10-21")))

	first, err := rec.BookingsOn(ctx, day)
	require.NoError(t, err)
	second, err := rec.BookingsOn(ctx, day)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.reads())
	assert.True(t, mr.Exists("bookings:day:2026-10-21"))

	mr.FastForward(2 * time.Minute)
	_, err = rec.BookingsOn(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.reads(), "expired entry is refetched")
}

func TestCachedRecorder_AppendInvalidatesDay(t *testing.T) {
	rec, inner, _ := newCached(t)
	ctx := context.Background()
	day := time.Date(2026, time.October, 21, 0, 0, 0, 0, time.UTC)

	got, err := rec.BookingsOn(ctx, day)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, rec.AppendBooking(ctx, booking("BOOK-1", "(281) 555-0100", "2026-10-21")))

	got, err = rec.BookingsOn(ctx, day)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, inner.reads())
}

func TestCachedRecorder_RedisDownFallsThrough(t *testing.T) {
	rec, inner, mr := newCached(t)
	ctx := context.Background()
	require.NoError(t, inner.AppendBooking(ctx, booking("BOOK-1", "(281) 555-0100", "2026-10-21")))
	mr.Close()

	got, err := rec.BookingsOn(ctx, time.Date(2026, time.October, 21, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFanout(t *testing.T) {
	ctx := context.Background()
	primary := &memRecorder{}
	mirror := &memRecorder{err: errors.New("mongo down")}
	f := NewFanout(zaptest.NewLogger(t), primary, mirror)

	require.NoError(t, f.AppendBooking(ctx, booking("BOOK-1", "(281) 555-0100", "2026-10-21")))
	require.NoError(t, f.LogCall(ctx, models.CallLog{CallSID: "CA1"}))
	assert.Len(t, primary.records, 1)
	assert.Len(t, primary.calls, 1)

	healthy := &memRecorder{}
	broken := &memRecorder{err: errors.New("sheets quota")}
	f = NewFanout(zaptest.NewLogger(t), broken, healthy)
	assert.Error(t, f.AppendPartialLead(ctx, booking("LEAD-1", "(281) 555-0100", "")))
	assert.Empty(t, healthy.records, "mirror is skipped when the primary fails")
}
