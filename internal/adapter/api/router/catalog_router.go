package router

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/handler"
)

func SetupCatalogRouter(e *echo.Echo) {
	catalogHandler := handler.GetCatalogHandler()

	e.GET("/v1/catalog", catalogHandler.Browse)
}
