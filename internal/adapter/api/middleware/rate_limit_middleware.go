package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"agrimarket/internal/infrastructure/ratelimit"
	"agrimarket/pkg/errors"
	"agrimarket/pkg/logger"
	"agrimarket/pkg/response"
)

// RateLimit throttles action per caller: the verified uid when present,
// otherwise the client IP.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, ok := c.Get("uid").(string)
			if !ok || key == "" {
				key = "ip:" + c.RealIP()
			}

			allowed, wait := limiter.Allow(key, action)
			if !allowed {
				logger.Warn("rate limit hit for %s on %s", key, action)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				return response.Error(c, errors.TooManyRequests("Too many requests, please slow down"))
			}

			return next(c)
		}
	}
}
