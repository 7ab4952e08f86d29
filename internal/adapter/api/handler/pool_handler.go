package handler

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/middleware"
	"agrimarket/internal/domain/entity"
	"agrimarket/internal/usecase"
	"agrimarket/pkg/response"
)

type PoolHandler struct {
	poolUseCase *usecase.PoolUseCase
}

func NewPoolHandler(poolUseCase *usecase.PoolUseCase) *PoolHandler {
	return &PoolHandler{
		poolUseCase: poolUseCase,
	}
}

type createPoolRequest struct {
	CropType       string  `json:"crop_type" validate:"required"`
	Region         string  `json:"region"`
	Season         string  `json:"season" validate:"omitempty,oneof=kharif rabi summer"`
	Price          float64 `json:"price" validate:"required,gt=0"`
	TargetQuantity int     `json:"target_quantity" validate:"required,gt=0"`
}

type joinPoolRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func (h *PoolHandler) CreatePool(c echo.Context) error {
	var req createPoolRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	pool, err := h.poolUseCase.CreatePool(c.Request().Context(), middleware.GetSession(c), usecase.CreatePoolInput{
		CropType:       req.CropType,
		Region:         req.Region,
		Season:         entity.Season(req.Season),
		Price:          req.Price,
		TargetQuantity: req.TargetQuantity,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, pool)
}

func (h *PoolHandler) JoinPool(c echo.Context) error {
	var req joinPoolRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	pool, err := h.poolUseCase.JoinPool(c.Request().Context(), middleware.GetSession(c), c.Param("id"), req.Quantity)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"pool":            pool,
		"fill_percentage": pool.FillPercentage(),
		"closed":          pool.IsClosed(),
	})
}

func (h *PoolHandler) ListPools(c echo.Context) error {
	pools, err := h.poolUseCase.ListPools(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, pools)
}
