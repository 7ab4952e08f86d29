package router

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/handler"
)

func SetupUserRouter(e *echo.Echo, guards Guards) {
	userHandler := handler.GetUserHandler()

	me := guards.Authenticated(e, "/v1/me")
	me.GET("", userHandler.GetProfile)
	me.PUT("", userHandler.UpdateProfile)

	e.GET("/v1/farmers", userHandler.ListFarmers)
}
