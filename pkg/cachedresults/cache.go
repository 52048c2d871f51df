// Package cachedresults memoizes gateway lookups for the lifetime of a
// session. Entries never go stale while the session lives.
package cachedresults

import (
	"context"
	"encoding/json"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	gocachestore "github.com/eko/gocache/store/go_cache/v4"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/google/uuid"
	"github.com/ontime-app/ontime/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DefaultSessionLength = 12 * time.Hour

type Cache struct {
	cache     *cache.Cache[string]
	namespace string
	metrics   *metrics.Metrics

	hits   atomic.Int64
	misses atomic.Int64
}

type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// NewMemory keeps entries in process with no expiration.
func NewMemory(m *metrics.Metrics) *Cache {
	client := gocache.New(gocache.NoExpiration, 10*time.Minute)

	return &Cache{
		cache:   cache.New[string](gocachestore.NewGoCache(client)),
		metrics: m,
	}
}

// NewRedis shares the entries through redis. Keys are namespaced per session
// and expire after sessionLength so abandoned sessions clean themselves up.
func NewRedis(client *redis.Client, sessionLength time.Duration, m *metrics.Metrics) *Cache {
	if sessionLength <= 0 {
		sessionLength = DefaultSessionLength
	}
	redisStore := redisstore.NewRedis(client, store.WithExpiration(sessionLength))

	c := &Cache{
		cache:     cache.New[string](redisStore),
		namespace: "ontime:cache:" + uuid.NewString() + ":",
		metrics:   m,
	}

	log.Debug().Str("namespace", c.namespace).Msg("Created redis result cache")

	return c
}

func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

func (c *Cache) lookup(ctx context.Context, key string) (string, bool) {
	value, err := c.cache.Get(ctx, c.namespace+key)
	// the stores report a missing key as an error, any failure is a miss
	if err != nil || value == "" {
		c.misses.Add(1)
		c.metrics.ObserveCacheLookup(false)
		return "", false
	}

	c.hits.Add(1)
	c.metrics.ObserveCacheLookup(true)
	return value, true
}

func (c *Cache) store(ctx context.Context, key string, value string) {
	if err := c.cache.Set(ctx, c.namespace+key, value); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to store cached result")
	}
}

// Key builds the composite cache key for an endpoint and its query
// parameters. Parameters are encoded sorted by name.
func Key(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + "?" + params.Encode()
}

// Memoize returns the cached value for key, or runs producer and caches its
// result. Failed producers are never cached. A nil cache always runs producer.
func Memoize[T any](ctx context.Context, c *Cache, key string, producer func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return producer(ctx)
	}

	if cached, found := c.lookup(ctx, key); found {
		var value T
		if err := json.Unmarshal([]byte(cached), &value); err == nil {
			return value, nil
		}
		log.Warn().Str("key", key).Msg("Discarding undecodable cached result")
	}

	value, err := producer(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to encode result for cache")
		return value, nil
	}
	c.store(ctx, key, string(encoded))

	return value, nil
}
