package router

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/handler"
	"agrimarket/internal/domain/entity"
)

func SetupAnalyticsRouter(e *echo.Echo, guards Guards) {
	analyticsHandler := handler.GetAnalyticsHandler()

	consumers := guards.Role(e, "/v1/consumer", entity.RoleConsumer)
	consumers.GET("/summary", analyticsHandler.ConsumerSummary)

	farmers := guards.Role(e, "/v1/farmer", entity.RoleFarmer)
	farmers.GET("/summary", analyticsHandler.FarmerSummary)
	farmers.GET("/analytics", analyticsHandler.SalesAnalytics)
	farmers.GET("/analytics/export", analyticsHandler.ExportSalesAnalytics)
}
