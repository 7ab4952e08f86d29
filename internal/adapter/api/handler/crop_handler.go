package handler

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/middleware"
	"agrimarket/internal/domain/entity"
	"agrimarket/internal/usecase"
	"agrimarket/pkg/response"
)

type CropHandler struct {
	cropUseCase *usecase.CropUseCase
}

func NewCropHandler(cropUseCase *usecase.CropUseCase) *CropHandler {
	return &CropHandler{
		cropUseCase: cropUseCase,
	}
}

type createCropRequest struct {
	CropType  string  `json:"crop_type" validate:"required"`
	Region    string  `json:"region" validate:"required"`
	Season    string  `json:"season" validate:"required,oneof=kharif rabi summer"`
	Quality   string  `json:"quality" validate:"required,oneof=premium standard economy"`
	Quantity  int     `json:"quantity" validate:"gte=0"`
	BasePrice float64 `json:"base_price" validate:"required,gt=0"`
}

type updateCropRequest struct {
	CropType         *string  `json:"crop_type" validate:"omitempty,min=1"`
	Region           *string  `json:"region" validate:"omitempty,min=1"`
	Season           *string  `json:"season" validate:"omitempty,oneof=kharif rabi summer"`
	Quality          *string  `json:"quality" validate:"omitempty,oneof=premium standard economy"`
	BasePrice        *float64 `json:"base_price" validate:"omitempty,gt=0"`
	Quantity         *int     `json:"quantity" validate:"omitempty,gte=0"`
	ExpectedQuantity *int     `json:"expected_quantity" validate:"omitempty,gte=0"`
}

func (h *CropHandler) CreateCrop(c echo.Context) error {
	var req createCropRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	crop, err := h.cropUseCase.CreateCrop(c.Request().Context(), middleware.GetSession(c), usecase.CropInput{
		CropType:  req.CropType,
		Region:    req.Region,
		Season:    entity.Season(req.Season),
		Quality:   entity.Quality(req.Quality),
		Quantity:  req.Quantity,
		BasePrice: req.BasePrice,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, crop)
}

func (h *CropHandler) ListMyCrops(c echo.Context) error {
	crops, err := h.cropUseCase.ListMyCrops(c.Request().Context(), middleware.GetSession(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, crops)
}

func (h *CropHandler) UpdateCrop(c echo.Context) error {
	var req updateCropRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	input := usecase.UpdateCropInput{
		CropType:         req.CropType,
		Region:           req.Region,
		BasePrice:        req.BasePrice,
		Quantity:         req.Quantity,
		ExpectedQuantity: req.ExpectedQuantity,
	}
	if req.Season != nil {
		season := entity.Season(*req.Season)
		input.Season = &season
	}
	if req.Quality != nil {
		quality := entity.Quality(*req.Quality)
		input.Quality = &quality
	}

	crop, err := h.cropUseCase.UpdateCrop(c.Request().Context(), middleware.GetSession(c), c.Param("id"), input)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, crop)
}

func (h *CropHandler) DeleteCrop(c echo.Context) error {
	if err := h.cropUseCase.DeleteCrop(c.Request().Context(), middleware.GetSession(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Crop deleted"})
}
