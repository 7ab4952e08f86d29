package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/middleware"
	"agrimarket/internal/domain/entity"
	"agrimarket/internal/usecase"
	"agrimarket/pkg/response"
)

type OrderHandler struct {
	orderUseCase   *usecase.OrderUseCase
	consoleUseCase *usecase.OrderConsoleUseCase
}

func NewOrderHandler(orderUseCase *usecase.OrderUseCase, consoleUseCase *usecase.OrderConsoleUseCase) *OrderHandler {
	return &OrderHandler{
		orderUseCase:   orderUseCase,
		consoleUseCase: consoleUseCase,
	}
}

type placeOrderRequest struct {
	PaymentMethod string   `json:"payment_method" validate:"required,oneof=UPI PHONE COD"`
	LineIDs       []string `json:"line_ids" validate:"omitempty,dive,required"`
}

type advanceOrderRequest struct {
	Status string `json:"status" validate:"required,oneof=in_delivery delivered"`
}

// PlaceOrder places the selected cart lines one by one.
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	var req placeOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.orderUseCase.PlaceCart(c.Request().Context(), middleware.GetSession(c), entity.PaymentMethod(req.PaymentMethod), req.LineIDs)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Status(c, placeStatus(result), result)
}

// placeStatus is 201 when any line was placed, otherwise the status of the
// first failure.
func placeStatus(result *usecase.PlaceResult) int {
	if len(result.Placed) > 0 {
		return http.StatusCreated
	}
	if len(result.Failed) > 0 && result.Failed[0].Status != 0 {
		return result.Failed[0].Status
	}
	return http.StatusOK
}

func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	orders, err := h.orderUseCase.ListConsumerOrders(c.Request().Context(), middleware.GetSession(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, orders)
}

func (h *OrderHandler) ListFarmerOrders(c echo.Context) error {
	orders, err := h.consoleUseCase.ListOrders(c.Request().Context(), middleware.GetSession(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, orders)
}

func (h *OrderHandler) AdvanceStatus(c echo.Context) error {
	var req advanceOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	order, err := h.consoleUseCase.AdvanceStatus(c.Request().Context(), middleware.GetSession(c), c.Param("id"), entity.OrderStatus(req.Status))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}
