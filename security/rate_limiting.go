package security

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/pocketbase/pocketbase/apis"
	pbmodels "github.com/pocketbase/pocketbase/models"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client
	limit int
}

// NewRateLimiter limits requests per identity per minute. Sign-up traffic
// spikes when a popular part opens; the limiter keeps one member from
// hammering apply/cancel in a loop.
func NewRateLimiter(redisClient *redis.Client, perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 30
	}
	return &RateLimiter{redis: redisClient, limit: perMinute}
}

// SignupRateLimit is an echo middleware applied to the apply/cancel routes.
// Authenticated members are limited per user id, everyone else per IP. A
// redis failure lets the request through; rate limiting is best effort.
func (r *RateLimiter) SignupRateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := fmt.Sprintf("ratelimit:signup:%s", r.identity(c))
			ctx := c.Request().Context()

			count, err := r.redis.Incr(ctx, key).Result()
			if err == nil {
				if count == 1 {
					r.redis.Expire(ctx, key, time.Minute)
				}
				if count > int64(r.limit) {
					return c.JSON(http.StatusTooManyRequests, map[string]string{
						"error": "Too many requests. Please try again later.",
					})
				}
			}

			return next(c)
		}
	}
}

func (r *RateLimiter) identity(c echo.Context) string {
	if authRecord, ok := c.Get(apis.ContextAuthRecordKey).(*pbmodels.Record); ok && authRecord != nil {
		return "user:" + authRecord.Id
	}
	return "ip:" + c.RealIP()
}
