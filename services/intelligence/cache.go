// File: services/intelligence/cache.go
package ai

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const intentCachePrefix = "ai:intent:"

// CachedClassifier remembers answers of a slower classifier in Redis so
// repeated phrasings skip the network call. Unrecognized answers are not
// cached.
type CachedClassifier struct {
	next   Classifier
	client *redis.Client
	ttl    time.Duration
}

func NewCachedClassifier(next Classifier, client *redis.Client, ttl time.Duration) *CachedClassifier {
	return &CachedClassifier{next: next, client: client, ttl: ttl}
}

func cacheKey(text string, categories []string) string {
	h := sha1.New()
	h.Write([]byte(canonical(text)))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(categories, "|")))
	return intentCachePrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedClassifier) Classify(ctx context.Context, text string, categories []string) (string, error) {
	key := cacheKey(text, categories)
	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		// Entries are re-checked against the allowed set.
		return Normalize(cached, categories), nil
	}
	if err != redis.Nil {
		return c.next.Classify(ctx, text, categories)
	}

	out, err := c.next.Classify(ctx, text, categories)
	if err != nil {
		return "", err
	}
	if out != Unrecognized {
		_ = c.client.Set(ctx, key, out, c.ttl).Err()
	}
	return out, nil
}
