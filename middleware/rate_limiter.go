package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/Triaksa-Space/youthspark-cms/pkg/apperrors"
	"github.com/Triaksa-Space/youthspark-cms/pkg/logger"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds the configuration for rate limiting
type RateLimiterConfig struct {
	MaxRequests int           // requests allowed per window
	Window      time.Duration // fixed window length
	KeyPrefix   string
	Redis       *redis.Client // nil selects the in-process store
}

// RedisStore is a fixed-window counter shared by every instance. It
// implements echo's RateLimiterStore.
type RedisStore struct {
	client   *redis.Client
	prefix   string
	limit    int
	window   time.Duration
	fallback echomw.RateLimiterStore
	log      logger.Logger
}

// NewRedisStore returns a store counting in redis. When redis errors the
// decision is taken by fallback.
func NewRedisStore(client *redis.Client, prefix string, limit int, window time.Duration, fallback echomw.RateLimiterStore) *RedisStore {
	return &RedisStore{
		client:   client,
		prefix:   prefix,
		limit:    limit,
		window:   window,
		fallback: fallback,
		log:      logger.Get().WithComponent("rate_limiter"),
	}
}

// Allow increments the caller's counter and reports whether it is within the limit.
func (s *RedisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := fmt.Sprintf("%s%s", s.prefix, identifier)

	count, err := s.hit(ctx, key)
	if err != nil {
		s.log.Warn("Redis rate limit check failed, using process memory", logger.Err(err))
		return s.fallback.Allow(identifier)
	}
	return count <= int64(s.limit), nil
}

// hit increments key and reads its TTL in one MULTI/EXEC. A counter without a
// TTL (first hit, or an earlier EXPIRE that failed) gets the window set here,
// so no key outlives its window by more than one request.
func (s *RedisStore) hit(ctx context.Context, key string) (int64, error) {
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if ttl.Val() < 0 {
		if err := s.client.Expire(ctx, key, s.window).Err(); err != nil {
			return 0, err
		}
	}
	return incr.Val(), nil
}

// NewMemoryStore is the in-process token bucket: limit requests per window,
// bursting up to limit.
func NewMemoryStore(limit int, window time.Duration) echomw.RateLimiterStore {
	return echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(limit) / window.Seconds()),
		Burst:     limit,
		ExpiresIn: window,
	})
}

// RateLimiterMiddleware limits requests per client IP. Rejected requests get 429.
func RateLimiterMiddleware(config RateLimiterConfig) echo.MiddlewareFunc {
	if config.MaxRequests <= 0 {
		config.MaxRequests = 10
	}
	if config.Window <= 0 {
		config.Window = 15 * time.Minute
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "ratelimit:login:"
	}

	var store echomw.RateLimiterStore = NewMemoryStore(config.MaxRequests, config.Window)
	if config.Redis != nil {
		store = NewRedisStore(config.Redis, config.KeyPrefix, config.MaxRequests, config.Window, store)
	}

	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.NewInternal(apperrors.ErrCodeUnexpectedError, "Internal server error", err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			logger.Get().WithComponent("rate_limiter").Warn("Rate limit exceeded",
				logger.RemoteIP(identifier), logger.Path(c.Path()))
			return apperrors.NewTooManyRequests(apperrors.ErrCodeRateLimitExceeded,
				"Too many requests from this IP, please try again later.")
		},
	})
}
