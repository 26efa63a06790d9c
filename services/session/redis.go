// File: services/session/redis.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"moveline/models"
	"moveline/utils"

	"github.com/go-redis/redis/v8"
)

const maxTxAttempts = 5

// RedisStore keeps sessions as JSON under session:<id>, with a sorted set of
// ids scored by last activity for idle eviction. Updates run in a WATCH/MULTI
// transaction so concurrent writers to one session never interleave.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a store whose keys expire after ttl of inactivity as
// a backstop for the sweeper.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return utils.SessionKeyPrefix + id
}

func (r *RedisStore) Create(ctx context.Context, s *models.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("Create: encode session: %w", err)
	}
	ok, err := r.client.SetNX(ctx, sessionKey(s.ID), b, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	if !ok {
		return ErrSessionExists
	}
	return r.client.ZAdd(ctx, utils.SessionActivityKey, &redis.Z{
		Score:  float64(s.LastActivityAt.Unix()),
		Member: s.ID,
	}).Err()
}

func (r *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return decode(data)
}

func (r *RedisStore) Update(ctx context.Context, id string, fn Mutator) (*models.Session, error) {
	key := sessionKey(id)
	var out *models.Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		s, err := decode(data)
		if err != nil {
			return err
		}
		version := s.Version
		if err := fn(s); err != nil {
			return err
		}
		s.ID = id
		s.Version = version + 1

		b, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, r.ttl)
			pipe.ZAdd(ctx, utils.SessionActivityKey, &redis.Z{
				Score:  float64(s.LastActivityAt.Unix()),
				Member: id,
			})
			return nil
		})
		if err != nil {
			return err
		}
		out = s
		return nil
	}

	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, ErrConflict
}

func (r *RedisStore) Remove(ctx context.Context, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(id))
		pipe.ZRem(ctx, utils.SessionActivityKey, id)
		return nil
	})
	return err
}

func (r *RedisStore) Idle(ctx context.Context, before time.Time) ([]string, error) {
	ids, err := r.client.ZRangeByScore(ctx, utils.SessionActivityKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(before.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("Idle: %w", err)
	}
	return ids, nil
}

func (r *RedisStore) List(ctx context.Context) ([]*models.Session, error) {
	ids, err := r.client.ZRange(ctx, utils.SessionActivityKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	out := make([]*models.Session, 0, len(ids))
	for _, id := range ids {
		s, err := r.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// expired by TTL; drop the stale index entry
			r.client.ZRem(ctx, utils.SessionActivityKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decode(data []byte) (*models.Session, error) {
	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Retries == nil {
		s.Retries = map[models.Field]int{}
	}
	return &s, nil
}
