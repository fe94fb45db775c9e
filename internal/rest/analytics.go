package rest

import (
	"context"
	"net/http"

	"bioAffiliate/business/analytics"
	"bioAffiliate/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	AnalyticsHandler struct {
		analyticsService AnalyticsService
	}

	AnalyticsService interface {
		GetSummary(ctx context.Context, partnerID *uint, days int) (analytics.Summary, error)
		GetDaily(ctx context.Context, partnerID *uint, days int) ([]analytics.DailyPoint, error)
		GetTopPartners(ctx context.Context, days, limit int) ([]analytics.TopPartner, error)
		GetTopProducts(ctx context.Context, days, limit int) ([]analytics.TopProduct, error)
	}
)

func NewAnalyticsHandler(analyticsService AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

func (h *AnalyticsHandler) GetSummary(c echo.Context) error {
	partnerID, err := parseOptionalUint(c, "partner_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid partner_id"})
	}

	summary, err := h.analyticsService.GetSummary(c.Request().Context(), partnerID, parseIntDefault(c, "days", 30))
	if err != nil {
		logger.Error("Failed to load analytics summary", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(summary))
}

func (h *AnalyticsHandler) GetDaily(c echo.Context) error {
	partnerID, err := parseOptionalUint(c, "partner_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid partner_id"})
	}

	points, err := h.analyticsService.GetDaily(c.Request().Context(), partnerID, parseIntDefault(c, "days", 30))
	if err != nil {
		logger.Error("Failed to load daily analytics", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(points))
}

func (h *AnalyticsHandler) GetTopPartners(c echo.Context) error {
	top, err := h.analyticsService.GetTopPartners(c.Request().Context(),
		parseIntDefault(c, "days", 30), parseIntDefault(c, "limit", 10))
	if err != nil {
		logger.Error("Failed to load top partners", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(top))
}

func (h *AnalyticsHandler) GetTopProducts(c echo.Context) error {
	top, err := h.analyticsService.GetTopProducts(c.Request().Context(),
		parseIntDefault(c, "days", 30), parseIntDefault(c, "limit", 10))
	if err != nil {
		logger.Error("Failed to load top products", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(top))
}
