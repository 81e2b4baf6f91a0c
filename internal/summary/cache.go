package summary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const cacheKeyPrefix = "interview-analyzer:summary:"

// CacheConfig holds Redis connection settings for the summary cache
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Cached memoizes another Summarizer in Redis. Cache failures are logged and
// the wrapped summarizer is used directly.
type Cached struct {
	next   Summarizer
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Entry
}

// NewCached wraps next with a Redis backed cache
func NewCached(next Summarizer, cfg CacheConfig, log *logrus.Entry) *Cached {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   1,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	return newCachedWithClient(next, client, cfg.TTL, log)
}

func newCachedWithClient(next Summarizer, client *redis.Client, ttl time.Duration, log *logrus.Entry) *Cached {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cached{
		next:   next,
		client: client,
		ttl:    ttl,
		log:    log.WithField("component", "summary.cache"),
	}
}

// Summarize implements Summarizer
func (c *Cached) Summarize(ctx context.Context, text string, maxTokens, minTokens int) (string, error) {
	key := cacheKey(text, maxTokens, minTokens)

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		c.log.WithField("key", key).Debug("summary cache hit")
		return cached, nil
	case err != redis.Nil:
		c.log.WithError(err).Warn("summary cache get failed")
	}

	summary, err := c.next.Summarize(ctx, text, maxTokens, minTokens)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, summary, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("summary cache set failed")
	}

	return summary, nil
}

// Close releases the Redis connection pool
func (c *Cached) Close() error {
	return c.client.Close()
}

func cacheKey(text string, maxTokens, minTokens int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%d:%s", maxTokens, minTokens, text)))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
