package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"bioAffiliate/pkg/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects the client backing the postback rate limiter. The
// workload is small INCR/EXPIRE pairs on the hot ingestion path, and the
// limiter is log-and-allow on failure, so timeouts are kept short: a slow
// Redis should degrade into unlimited intake, not into slow postbacks.
func NewRedisClient(config *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            net.JoinHostPort(config.Redis.RedisHost, config.Redis.RedisPort),
		Password:        config.Redis.RedisPassword,
		DB:              config.Redis.RedisDB,
		DialTimeout:     2 * time.Second,
		ReadTimeout:     500 * time.Millisecond,
		WriteTimeout:    500 * time.Millisecond,
		PoolSize:        20,
		MinIdleConns:    2,
		ConnMaxIdleTime: 5 * time.Minute,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// CloseRedisClient closes the Redis connection
func CloseRedisClient(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}

	return nil
}
