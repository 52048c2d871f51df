// Package kvstore is the device key-value storage the saved routes, to-do
// items and memos live in. Values are opaque strings, callers serialize.
package kvstore

import (
	"context"
	"fmt"
)

type Store interface {
	// Get returns the value for key and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	// Remove deletes key, deleting a missing key is not an error
	Remove(ctx context.Context, key string) error
	RemoveAll(ctx context.Context, keys []string) error
	// ListKeys returns every stored key in ascending order
	ListKeys(ctx context.Context) ([]string, error)
	Close() error
}

type Backend string

const (
	BackendMemory  Backend = "memory"
	BackendSQLite  Backend = "sqlite"
	BackendRedis   Backend = "redis"
	BackendMongoDB Backend = "mongodb"
)

type Options struct {
	Backend Backend

	// SQLitePath is the database file for the sqlite backend
	SQLitePath string

	RedisAddress  string
	RedisPassword string
	RedisDatabase int
	RedisPrefix   string

	MongoConnection string
	MongoDatabase   string
}

// Open creates the store selected by options.Backend.
func Open(ctx context.Context, options Options) (Store, error) {
	switch options.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendSQLite:
		return OpenSQLiteStore(ctx, options.SQLitePath)
	case BackendRedis:
		return OpenRedisStore(ctx, options)
	case BackendMongoDB:
		return OpenMongoStore(ctx, options.MongoConnection, options.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", options.Backend)
	}
}
