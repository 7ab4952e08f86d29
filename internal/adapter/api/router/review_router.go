package router

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/handler"
	"agrimarket/internal/domain/entity"
)

func SetupReviewRouter(e *echo.Echo, guards Guards) {
	reviewHandler := handler.GetReviewHandler()

	e.GET("/v1/farmers/:id/reviews", reviewHandler.ListReviews)

	consumers := guards.Role(e, "/v1/farmers", entity.RoleConsumer)
	consumers.POST("/:id/reviews", reviewHandler.CreateReview)
}
