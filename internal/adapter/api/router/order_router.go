package router

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/handler"
	"agrimarket/internal/adapter/api/middleware"
	"agrimarket/internal/domain/entity"
	"agrimarket/internal/infrastructure/ratelimit"
)

func SetupOrderRouter(e *echo.Echo, guards Guards, limiter *ratelimit.RateLimiter) {
	orderHandler := handler.GetOrderHandler()

	consumers := guards.Role(e, "/v1/orders", entity.RoleConsumer)
	consumers.POST("", orderHandler.PlaceOrder, middleware.RateLimit(limiter, "orders"))
	consumers.GET("", orderHandler.ListMyOrders)

	farmers := guards.Role(e, "/v1/farmer/orders", entity.RoleFarmer)
	farmers.GET("", orderHandler.ListFarmerOrders)
	farmers.POST("/:id/advance", orderHandler.AdvanceStatus)
}
