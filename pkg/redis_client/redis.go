package redis_client

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const defaultConnectionAddress = "localhost:6379"

type Options struct {
	Address  string
	Password string
	Database int
}

// Connect opens a client and checks the server answers a PING.
func Connect(ctx context.Context, options Options) (*redis.Client, error) {
	address := options.Address
	if address == "" {
		address = defaultConnectionAddress
	}

	redisOptions := &redis.Options{
		Addr: address,
		DB:   options.Database,
	}
	if options.Password != "" {
		redisOptions.Password = options.Password
	}

	client := redis.NewClient(redisOptions)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	log.Debug().Str("address", address).Int("database", options.Database).Msg("Connected to Redis")

	return client, nil
}
