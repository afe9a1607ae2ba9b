package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisOptions sizes the connection pool. Zero values fall back to go-redis
// defaults.
type RedisOptions struct {
	URL          string
	PoolSize     int
	MinIdleConns int
}

// NewRedis connects and pings. An empty URL yields (nil, nil): the API
// degrades to in-process locks and dropped notifications instead of failing
// startup.
func NewRedis(opts RedisOptions) (*redis.Client, error) {
	if opts.URL == "" {
		log.Warn().Msg("Redis URL not configured, running without Redis")
		return nil, nil
	}

	opt, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, err
	}
	opt.PoolSize = opts.PoolSize
	opt.MinIdleConns = opts.MinIdleConns
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	log.Info().Int("pool_size", opt.PoolSize).Msg("Connected to Redis")
	return client, nil
}

// CloseRedis closes the Redis connection
func CloseRedis(client *redis.Client) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing Redis connection")
		return
	}
	log.Info().Msg("Redis connection closed")
}
