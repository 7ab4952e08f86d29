package handler

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/usecase"
	"agrimarket/pkg/response"
)

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

type registerRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	Role      string  `json:"role" validate:"required,oneof=farmer consumer"`
	FullName  string  `json:"full_name" validate:"required"`
	Phone     string  `json:"phone" validate:"required"`
	PaymentID string  `json:"payment_id" validate:"omitempty,paymentid"`
	FarmSize  float64 `json:"farm_size" validate:"gte=0"`
	Location  string  `json:"location"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type resetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.authUseCase.Register(c.Request().Context(), usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Role:      entity.Role(req.Role),
		FullName:  req.FullName,
		Phone:     req.Phone,
		PaymentID: req.PaymentID,
		FarmSize:  req.FarmSize,
		Location:  req.Location,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
		"message": "Account created. Check your inbox to verify your email before logging in.",
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	h.authUseCase.ResetPassword(c.Request().Context(), req.Email)

	return response.Success(c, map[string]string{
		"message": "If the address is registered, a reset link is on its way.",
	})
}
