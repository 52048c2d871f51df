package kvstore

import (
	"context"
	"errors"
	"strings"

	"github.com/ontime-app/ontime/pkg/redis_client"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slices"
)

const defaultRedisPrefix = "ontime:storage:"

type RedisStore struct {
	client *redis.Client
	prefix string
}

func OpenRedisStore(ctx context.Context, options Options) (*RedisStore, error) {
	client, err := redis_client.Connect(ctx, redis_client.Options{
		Address:  options.RedisAddress,
		Password: options.RedisPassword,
		Database: options.RedisDatabase,
	})
	if err != nil {
		return nil, err
	}

	return NewRedisStore(client, options.RedisPrefix), nil
}

// NewRedisStore wraps an existing client. Every key is stored under prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return value, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value string) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

func (r *RedisStore) RemoveAll(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, r.prefix+key)
	}

	return r.client.Del(ctx, prefixed...).Err()
}

func (r *RedisStore) ListKeys(ctx context.Context) ([]string, error) {
	keys := []string{}

	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	slices.Sort(keys)

	return keys, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
