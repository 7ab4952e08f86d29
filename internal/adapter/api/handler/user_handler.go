package handler

import (
	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/middleware"
	"agrimarket/internal/usecase"
	"agrimarket/pkg/response"
	"agrimarket/pkg/utils"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type updateProfileRequest struct {
	FullName   *string  `json:"full_name" validate:"omitempty,min=1"`
	Phone      *string  `json:"phone"`
	PaymentID  *string  `json:"payment_id"`
	Address    *string  `json:"address"`
	City       *string  `json:"city"`
	State      *string  `json:"state"`
	Pincode    *string  `json:"pincode"`
	FarmSize   *float64 `json:"farm_size" validate:"omitempty,gte=0"`
	Location   *string  `json:"location"`
	CropsGrown []string `json:"crops_grown"`
}

// farmerCard is the public part of a farmer profile.
type farmerCard struct {
	ID          string   `json:"id"`
	FullName    string   `json:"full_name"`
	Location    string   `json:"location,omitempty"`
	MemberSince string   `json:"member_since,omitempty"`
	CropsGrown  []string `json:"crops_grown,omitempty"`
	Rating      float64  `json:"rating"`
	RatingCount int      `json:"rating_count"`
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userUseCase.GetProfile(c.Request().Context(), middleware.GetSession(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), middleware.GetSession(c), usecase.UpdateProfileInput{
		FullName:   req.FullName,
		Phone:      req.Phone,
		PaymentID:  req.PaymentID,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		Pincode:    req.Pincode,
		FarmSize:   req.FarmSize,
		Location:   req.Location,
		CropsGrown: req.CropsGrown,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *UserHandler) ListFarmers(c echo.Context) error {
	farmers, err := h.userUseCase.ListFarmers(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	cards := make([]farmerCard, 0, len(farmers))
	for _, f := range farmers {
		card := farmerCard{
			ID:          f.ID,
			FullName:    f.FullName,
			CropsGrown:  f.CropsGrown,
			Rating:      f.Rating,
			RatingCount: f.RatingCount,
		}
		if f.Farm != nil {
			card.Location = f.Farm.Location
			card.MemberSince = f.Farm.MemberSince
		}
		cards = append(cards, card)
	}

	p := utils.GetPaginationParams(c)
	return response.Success(c, map[string]interface{}{
		"items": utils.Page(cards, p),
		"total": len(farmers),
		"page":  p.Page,
		"limit": p.PageSize,
	})
}
