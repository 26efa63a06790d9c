package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moveline/models"
)

var t0 = time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)

// eachStore runs fn against the in-memory store and a Redis store backed by miniredis.
func eachStore(t *testing.T, fn func(t *testing.T, st Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		fn(t, NewRedisStore(client, time.Hour))
	})
}

func TestStore_CreateGet(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		s := models.NewSession("CA1", models.ChannelVoice, models.DirectionInbound, t0)
		s.CallerPhone = "+12817434503"
		require.NoError(t, st.Create(ctx, s))

		got, err := st.Get(ctx, "CA1")
		require.NoError(t, err)
		assert.Equal(t, models.StepGreeting, got.Step)
		assert.Equal(t, "+12817434503", got.CallerPhone)

		assert.ErrorIs(t, st.Create(ctx, s), ErrSessionExists)

		_, err = st.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_UpdateBumpsVersion(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.Create(ctx, models.NewSession("CA1", models.ChannelVoice, models.DirectionInbound, t0)))

		updated, err := st.Update(ctx, "CA1", func(s *models.Session) error {
			s.Step = models.StepCollectName
			s.Data.Name = "John Smith"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated.Version)

		got, err := st.Get(ctx, "CA1")
		require.NoError(t, err)
		assert.Equal(t, models.StepCollectName, got.Step)
		assert.Equal(t, "John Smith", got.Data.Name)
		assert.Equal(t, int64(1), got.Version)
	})
}

func TestStore_FailedMutatorLeavesSessionUntouched(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.Create(ctx, models.NewSession("CA1", models.ChannelVoice, models.DirectionInbound, t0)))

		boom := errors.New("boom")
		_, err := st.Update(ctx, "CA1", func(s *models.Session) error {
			s.Data.Name = "half written"
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := st.Get(ctx, "CA1")
		require.NoError(t, err)
		assert.Empty(t, got.Data.Name)
		assert.Equal(t, int64(0), got.Version)
	})
}

func TestStore_ReturnsCopies(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.Create(ctx, models.NewSession("CA1", models.ChannelVoice, models.DirectionInbound, t0)))

		got, err := st.Get(ctx, "CA1")
		require.NoError(t, err)
		got.Data.Name = "Mallory"
		got.Retries[models.FieldName] = 7

		again, err := st.Get(ctx, "CA1")
		require.NoError(t, err)
		assert.Empty(t, again.Data.Name)
		assert.Zero(t, again.Retries[models.FieldName])
	})
}

func TestStore_ExpectVersion(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.Create(ctx, models.NewSession("CA1", models.ChannelVoice, models.DirectionInbound, t0)))

		_, err := st.Update(ctx, "CA1", ExpectVersion(0, func(s *models.Session) error { return nil }))
		require.NoError(t, err)

		_, err = st.Update(ctx, "CA1", ExpectVersion(0, func(s *models.Session) error {
			s.Data.Name = "stale"
			return nil
		}))
		assert.ErrorIs(t, err, ErrConflict)

		got, err := st.Get(ctx, "CA1")
		require.NoError(t, err)
		assert.Empty(t, got.Data.Name)
	})
}

func TestStore_RemoveAndIdle(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		old := models.NewSession("old", models.ChannelVoice, models.DirectionInbound, t0)
		fresh := models.NewSession("fresh", models.ChannelSMS, models.DirectionInbound, t0.Add(20*time.Minute))
		require.NoError(t, st.Create(ctx, old))
		require.NoError(t, st.Create(ctx, fresh))

		ids, err := st.Idle(ctx, t0.Add(15*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, []string{"old"}, ids)

		all, err := st.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		require.NoError(t, st.Remove(ctx, "old"))
		require.NoError(t, st.Remove(ctx, "old"))
		_, err = st.Get(ctx, "old")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = st.Update(ctx, "old", func(*models.Session) error { return nil })
		assert.ErrorIs(t, err, ErrNotFound)

		ids, err = st.Idle(ctx, t0.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, []string{"fresh"}, ids)
	})
}

func TestStore_ConcurrentUpdatesAreNotLost(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.Create(ctx, models.NewSession("CA1", models.ChannelVoice, models.DirectionInbound, t0)))

		const writers = 20
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					_, err := st.Update(ctx, "CA1", func(s *models.Session) error {
						s.RecordFailure(models.FieldName)
						return nil
					})
					if errors.Is(err, ErrConflict) {
						continue
					}
					assert.NoError(t, err)
					return
				}
			}()
		}
		wg.Wait()

		got, err := st.Get(ctx, "CA1")
		require.NoError(t, err)
		assert.Equal(t, writers, got.Retries[models.FieldName])
		assert.Equal(t, int64(writers), got.Version)
	})
}
