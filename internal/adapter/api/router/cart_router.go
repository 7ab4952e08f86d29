package router

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/handler"
	"agrimarket/internal/adapter/api/middleware"
	"agrimarket/internal/domain/entity"
	"agrimarket/internal/infrastructure/ratelimit"
)

func SetupCartRouter(e *echo.Echo, guards Guards, limiter *ratelimit.RateLimiter) {
	cartHandler := handler.GetCartHandler()

	// Anonymous visitors see an empty cart rather than an error.
	public := guards.Public(e, "/v1/cart")
	public.GET("", cartHandler.ListLines)

	consumers := guards.Role(e, "/v1/cart", entity.RoleConsumer)
	consumers.POST("", cartHandler.AddLine, middleware.RateLimit(limiter, "cart"))
	consumers.DELETE("/:lineId", cartHandler.RemoveLine)
}
