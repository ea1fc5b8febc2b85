package config

import (
	"context"
	"time"

	"github.com/Triaksa-Space/youthspark-cms/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// NewRedis connects to REDIS_URL. It returns nil when the URL is empty or
// the server cannot be reached; callers fall back to in-process state.
func NewRedis(ctx context.Context, redisURL string) *redis.Client {
	log := logger.Get().WithComponent("redis")
	if redisURL == "" {
		log.Info("REDIS_URL not configured, login rate limit uses process memory")
		return nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn("Failed to parse REDIS_URL, falling back to process memory", logger.Err(err))
		return nil
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Failed to connect to Redis, falling back to process memory", logger.Err(err))
		client.Close()
		return nil
	}

	log.Info("Connected to Redis", logger.String("addr", opt.Addr))
	return client
}
