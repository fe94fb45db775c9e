package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"bioAffiliate/business/partner"
	"bioAffiliate/domain"
	"bioAffiliate/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	PartnerHandler struct {
		validate       *validator.Validate
		partnerService PartnerService
	}

	PartnerService interface {
		Create(ctx context.Context, partner *domain.Partner) (*domain.Partner, error)
		GetAll(ctx context.Context) ([]domain.Partner, error)
		GetByID(ctx context.Context, id uint) (domain.Partner, error)
		Update(ctx context.Context, partner *domain.Partner) (*domain.Partner, error)
		UpdateStatus(ctx context.Context, id uint, status string) error
		Delete(ctx context.Context, id uint) error
	}

	PartnerInput struct {
		CompanyName      string  `json:"company_name" validate:"required"`
		Slug             string  `json:"slug" validate:"required,min=2,max=128"`
		Email            string  `json:"email" validate:"omitempty,email"`
		APISecret        string  `json:"api_secret"`
		CommissionRate   float64 `json:"commission_rate" validate:"gte=0"`
		CommissionType   string  `json:"commission_type" validate:"omitempty,oneof=percentage flat"`
		CookieWindowDays int     `json:"cookie_window_days" validate:"gte=0,lte=365"`
		PayoutThreshold  float64 `json:"payout_threshold" validate:"gte=0"`
		PayoutMethod     string  `json:"payout_method"`
	}

	PartnerStatusInput struct {
		Status string `json:"status" validate:"required,oneof=pending active paused terminated"`
	}
)

func NewPartnerHandler(partnerService PartnerService) *PartnerHandler {
	return &PartnerHandler{
		validate:       validator.New(),
		partnerService: partnerService,
	}
}

func (h *PartnerHandler) CreatePartner(c echo.Context) error {
	var request PartnerInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate create partner", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	created, err := h.partnerService.Create(c.Request().Context(), &domain.Partner{
		CompanyName:      request.CompanyName,
		Slug:             request.Slug,
		Email:            request.Email,
		APISecret:        request.APISecret,
		CommissionRate:   request.CommissionRate,
		CommissionType:   request.CommissionType,
		CookieWindowDays: request.CookieWindowDays,
		PayoutThreshold:  request.PayoutThreshold,
		PayoutMethod:     request.PayoutMethod,
	})
	if err != nil {
		if errors.Is(err, partner.ErrSlugTaken) {
			return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to create partner", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(created))
}

func (h *PartnerHandler) GetAllPartners(c echo.Context) error {
	partners, err := h.partnerService.GetAll(c.Request().Context())
	if err != nil {
		logger.Error("Failed to get all partners", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(partners))
}

func (h *PartnerHandler) GetPartnerByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid partner id"})
	}

	found, err := h.partnerService.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, partner.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to get partner by id", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(found))
}

func (h *PartnerHandler) UpdatePartner(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid partner id"})
	}

	var request PartnerInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate update partner", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	updated, err := h.partnerService.Update(c.Request().Context(), &domain.Partner{
		ID:               uint(id),
		CompanyName:      request.CompanyName,
		Email:            request.Email,
		APISecret:        request.APISecret,
		CommissionRate:   request.CommissionRate,
		CommissionType:   request.CommissionType,
		CookieWindowDays: request.CookieWindowDays,
		PayoutThreshold:  request.PayoutThreshold,
		PayoutMethod:     request.PayoutMethod,
	})
	if err != nil {
		if errors.Is(err, partner.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to update partner", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *PartnerHandler) UpdatePartnerStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid partner id"})
	}

	var request PartnerStatusInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.partnerService.UpdateStatus(c.Request().Context(), uint(id), request.Status); err != nil {
		if errors.Is(err, partner.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to update partner status", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Partner status updated"))
}

func (h *PartnerHandler) DeletePartner(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid partner id"})
	}

	if err := h.partnerService.Delete(c.Request().Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, partner.ErrNotFound):
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		case errors.Is(err, partner.ErrHasUnpaidConversions):
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to delete partner", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Partner terminated"))
}

// parseOptionalUint reads a query parameter as *uint, nil when absent.
func parseOptionalUint(c echo.Context, name string) (*uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, err
	}

	v := uint(id)
	return &v, nil
}

// parseIntDefault reads a query parameter as int with a fallback.
func parseIntDefault(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}

	return v
}
