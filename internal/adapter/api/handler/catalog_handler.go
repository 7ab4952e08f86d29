package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/usecase"
	"agrimarket/pkg/errors"
	"agrimarket/pkg/response"
)

type CatalogHandler struct {
	catalogUseCase *usecase.CatalogUseCase
}

func NewCatalogHandler(catalogUseCase *usecase.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{
		catalogUseCase: catalogUseCase,
	}
}

func (h *CatalogHandler) Browse(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return response.Error(c, err)
	}

	catalog, err := h.catalogUseCase.Browse(c.Request().Context(), filter)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, catalog)
}

func parseFilter(c echo.Context) (usecase.Filter, error) {
	filter := usecase.Filter{
		Query:  strings.TrimSpace(c.QueryParam("q")),
		Region: strings.TrimSpace(c.QueryParam("region")),
		Season: entity.Season(strings.ToLower(strings.TrimSpace(c.QueryParam("season")))),
	}

	var err error
	if filter.MinPrice, err = priceParam(c, "min_price"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = priceParam(c, "max_price"); err != nil {
		return filter, err
	}

	return filter, filter.Validate()
}

func priceParam(c echo.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.Validation(name, name+" must be a number")
	}
	return &v, nil
}
