package router

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/handler"
	"agrimarket/internal/infrastructure/ratelimit"
)

func Setup(e *echo.Echo, guards Guards, limiter *ratelimit.RateLimiter, wsHandler *handler.WebSocketHandler) {
	SetupAuthRouter(e, limiter)
	SetupUserRouter(e, guards)
	SetupCropRouter(e, guards)
	SetupPoolRouter(e, guards)
	SetupCatalogRouter(e)
	SetupCartRouter(e, guards, limiter)
	SetupOrderRouter(e, guards, limiter)
	SetupReviewRouter(e, guards)
	SetupAnalyticsRouter(e, guards)
	SetupWebSocketRouter(e, guards, wsHandler)
	SetupHealthRouter(e)
}
