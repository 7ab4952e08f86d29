package router

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/handler"
	"agrimarket/internal/adapter/api/middleware"
	"agrimarket/internal/infrastructure/ratelimit"
)

// SetupAuthRouter initializes auth routes
func SetupAuthRouter(e *echo.Echo, limiter *ratelimit.RateLimiter) {
	authHandler := handler.GetAuthHandler()

	auth := e.Group("/v1/auth")
	auth.POST("/register", authHandler.Register, middleware.RateLimit(limiter, "register"))
	auth.POST("/login", authHandler.Login, middleware.RateLimit(limiter, "login"))
	auth.POST("/reset-password", authHandler.ResetPassword, middleware.RateLimit(limiter, "reset-password"))
}
