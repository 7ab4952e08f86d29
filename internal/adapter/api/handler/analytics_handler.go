package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"agrimarket/internal/adapter/api/middleware"
	"agrimarket/internal/usecase"
	"agrimarket/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AnalyticsHandler struct {
	analyticsUseCase *usecase.AnalyticsUseCase
}

func NewAnalyticsHandler(analyticsUseCase *usecase.AnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsUseCase: analyticsUseCase,
	}
}

func (h *AnalyticsHandler) ConsumerSummary(c echo.Context) error {
	summary, err := h.analyticsUseCase.ConsumerSummary(c.Request().Context(), middleware.GetSession(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, summary)
}

func (h *AnalyticsHandler) FarmerSummary(c echo.Context) error {
	summary, err := h.analyticsUseCase.FarmerSummary(c.Request().Context(), middleware.GetSession(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, summary)
}

func (h *AnalyticsHandler) SalesAnalytics(c echo.Context) error {
	analytics, err := h.analyticsUseCase.SalesAnalytics(c.Request().Context(), middleware.GetSession(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, analytics)
}

// ExportSalesAnalytics streams the workbook as an attachment.
func (h *AnalyticsHandler) ExportSalesAnalytics(c echo.Context) error {
	export, err := h.analyticsUseCase.ExportSalesAnalytics(c.Request().Context(), middleware.GetSession(c))
	if err != nil {
		return response.Error(c, err)
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, `attachment; filename="`+export.Filename+`"`)
	if export.Object != "" {
		header.Set("X-Report-Object", export.Object)
	}
	return c.Blob(http.StatusOK, xlsxContentType, export.Data)
}
