package handler

import (
	"agrimarket/internal/usecase"
)

var (
	authHandler      *AuthHandler
	userHandler      *UserHandler
	cropHandler      *CropHandler
	poolHandler      *PoolHandler
	catalogHandler   *CatalogHandler
	cartHandler      *CartHandler
	orderHandler     *OrderHandler
	reviewHandler    *ReviewHandler
	analyticsHandler *AnalyticsHandler
)

type UseCases struct {
	Auth         *usecase.AuthUseCase
	User         *usecase.UserUseCase
	Crop         *usecase.CropUseCase
	Pool         *usecase.PoolUseCase
	Catalog      *usecase.CatalogUseCase
	Cart         *usecase.CartUseCase
	Order        *usecase.OrderUseCase
	OrderConsole *usecase.OrderConsoleUseCase
	Review       *usecase.ReviewUseCase
	Analytics    *usecase.AnalyticsUseCase
}

func Setup(uc UseCases) {
	authHandler = NewAuthHandler(uc.Auth)
	userHandler = NewUserHandler(uc.User)
	cropHandler = NewCropHandler(uc.Crop)
	poolHandler = NewPoolHandler(uc.Pool)
	catalogHandler = NewCatalogHandler(uc.Catalog)
	cartHandler = NewCartHandler(uc.Cart)
	orderHandler = NewOrderHandler(uc.Order, uc.OrderConsole)
	reviewHandler = NewReviewHandler(uc.Review)
	analyticsHandler = NewAnalyticsHandler(uc.Analytics)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetCropHandler() *CropHandler {
	return cropHandler
}

func GetPoolHandler() *PoolHandler {
	return poolHandler
}

func GetCatalogHandler() *CatalogHandler {
	return catalogHandler
}

func GetCartHandler() *CartHandler {
	return cartHandler
}

func GetOrderHandler() *OrderHandler {
	return orderHandler
}

func GetReviewHandler() *ReviewHandler {
	return reviewHandler
}

func GetAnalyticsHandler() *AnalyticsHandler {
	return analyticsHandler
}
