package router

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/handler"
	"agrimarket/internal/domain/entity"
)

func SetupPoolRouter(e *echo.Echo, guards Guards) {
	poolHandler := handler.GetPoolHandler()

	e.GET("/v1/pools", poolHandler.ListPools)

	farmers := guards.Role(e, "/v1/farmer/pools", entity.RoleFarmer)
	farmers.POST("", poolHandler.CreatePool)
	farmers.POST("/:id/join", poolHandler.JoinPool)
}
