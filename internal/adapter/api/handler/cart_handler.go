package handler

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/middleware"
	"agrimarket/internal/domain/entity"
	"agrimarket/internal/usecase"
	"agrimarket/pkg/response"
)

type CartHandler struct {
	cartUseCase *usecase.CartUseCase
}

func NewCartHandler(cartUseCase *usecase.CartUseCase) *CartHandler {
	return &CartHandler{
		cartUseCase: cartUseCase,
	}
}

type addToCartRequest struct {
	SourceType string `json:"source_type" validate:"required,oneof=crop pool"`
	SourceID   string `json:"source_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
}

func (h *CartHandler) AddLine(c echo.Context) error {
	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	line, err := h.cartUseCase.AddLine(c.Request().Context(), middleware.GetSession(c), usecase.AddLineInput{
		SourceType: entity.SourceType(req.SourceType),
		SourceID:   req.SourceID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, line)
}

func (h *CartHandler) ListLines(c echo.Context) error {
	view, err := h.cartUseCase.ListLines(c.Request().Context(), middleware.GetSession(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, view)
}

func (h *CartHandler) RemoveLine(c echo.Context) error {
	if err := h.cartUseCase.RemoveLine(c.Request().Context(), middleware.GetSession(c), c.Param("lineId")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Removed from cart"})
}
