package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bplabo/license-portal/internal/persistence"
	apperrors "github.com/bplabo/license-portal/pkg/util/errorutil"
)

// RateLimiter is a redis-backed fixed-window limiter keyed by client IP.
// Requests pass through when Redis is unreachable.
type RateLimiter struct {
	redis  *persistence.Redis
	logger *zap.Logger
	window time.Duration
}

// NewRateLimiter constructs the limiter.
func NewRateLimiter(redis *persistence.Redis, logger *zap.Logger, window time.Duration) *RateLimiter {
	return &RateLimiter{redis: redis, logger: logger, window: window}
}

// Limit returns a middleware allowing max requests per window for the given
// scope.
func (rl *RateLimiter) Limit(scope string, max int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl.redis == nil || rl.redis.Client == nil || max <= 0 {
			return c.Next()
		}

		key := "ratelimit:" + scope + ":" + c.IP()
		ctx := c.UserContext()

		count, err := rl.redis.Client.Incr(ctx, key).Result()
		if err != nil {
			rl.logger.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}
		if count == 1 {
			if err := rl.redis.Client.Expire(ctx, key, rl.window).Err(); err != nil {
				rl.logger.Warn("rate limiter expire", zap.Error(err))
			}
		}

		if count > int64(max) {
			c.Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			return apperrors.NewDomainError(
				"RATE_LIMITED",
				"Too many requests, please try again later.",
				http.StatusTooManyRequests, nil)
		}
		return c.Next()
	}
}
