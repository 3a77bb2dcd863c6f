package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tair/orderflow/pkg/logger"
)

// CacheConfig holds response cache configuration
type CacheConfig struct {
	DefaultTTL      time.Duration
	CacheableStatus []int
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		DefaultTTL:      2 * time.Minute,
		CacheableStatus: []int{200, 203, 301, 404},
	}
}

// CacheMiddleware caches GET responses in Redis. Writes flow through
// untouched, so order and stock mutations are never served stale.
func CacheMiddleware(redisClient *redis.Client, config CacheConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redisClient == nil || c.Method() != fiber.MethodGet {
			return c.Next()
		}

		cacheKey := cacheKeyFor(c)
		ctx := context.Background()

		if cached, err := redisClient.Get(ctx, cacheKey).Bytes(); err == nil && len(cached) > 0 {
			logger.Logger.Debug().
				Str("path", c.Path()).
				Msg("Cache hit")

			c.Set("X-Cache", "HIT")
			c.Set("Content-Type", "application/json")
			return c.Send(cached)
		}

		err := c.Next()

		statusCode := c.Response().StatusCode()
		if statusCacheable(statusCode, config.CacheableStatus) {
			body := c.Response().Body()
			if setErr := redisClient.Set(ctx, cacheKey, body, config.DefaultTTL).Err(); setErr != nil {
				logger.Logger.Warn().
					Err(setErr).
					Str("path", c.Path()).
					Msg("Failed to cache response")
			}
			c.Set("X-Cache", "MISS")
		}

		return err
	}
}

// cacheKeyFor derives a key from the request line and the caller's
// identity. Authenticated responses must never leak across users.
func cacheKeyFor(c *fiber.Ctx) string {
	raw := fmt.Sprintf("%s:%s:%s:%s",
		c.Method(),
		c.Path(),
		string(c.Request().URI().QueryString()),
		c.Get("Authorization"),
	)
	hash := sha256.Sum256([]byte(raw))
	return "gateway:cache:" + hex.EncodeToString(hash[:])
}

func statusCacheable(status int, cacheable []int) bool {
	for _, s := range cacheable {
		if s == status {
			return true
		}
	}
	return false
}
