package router

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/handler"
	"agrimarket/internal/domain/entity"
)

func SetupCropRouter(e *echo.Echo, guards Guards) {
	cropHandler := handler.GetCropHandler()

	crops := guards.Role(e, "/v1/farmer/crops", entity.RoleFarmer)
	crops.POST("", cropHandler.CreateCrop)
	crops.GET("", cropHandler.ListMyCrops)
	crops.PATCH("/:id", cropHandler.UpdateCrop)
	crops.DELETE("/:id", cropHandler.DeleteCrop)
}
