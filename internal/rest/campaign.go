package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bioAffiliate/business/campaign"
	"bioAffiliate/domain"
	"bioAffiliate/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

type (
	CampaignHandler struct {
		validate        *validator.Validate
		campaignService CampaignService
	}

	CampaignService interface {
		Create(ctx context.Context, campaign *domain.Campaign) (*domain.Campaign, error)
		GetAll(ctx context.Context, partnerID *uint) ([]domain.Campaign, error)
		GetByID(ctx context.Context, id uint) (domain.Campaign, error)
		Update(ctx context.Context, campaign *domain.Campaign) (*domain.Campaign, error)
		Cancel(ctx context.Context, id uint) error
	}

	CampaignInput struct {
		PartnerID       uint            `json:"partner_id" validate:"required"`
		Name            string          `json:"name" validate:"required"`
		BonusCommission *float64        `json:"bonus_commission" validate:"omitempty,gte=0"`
		DiscountCode    string          `json:"discount_code"`
		UTMParams       json.RawMessage `json:"utm_params"`
		StartsAt        time.Time       `json:"starts_at" validate:"required"`
		EndsAt          time.Time       `json:"ends_at" validate:"required"`
	}
)

func NewCampaignHandler(campaignService CampaignService) *CampaignHandler {
	return &CampaignHandler{
		validate:        validator.New(),
		campaignService: campaignService,
	}
}

func (h *CampaignHandler) CreateCampaign(c echo.Context) error {
	var request CampaignInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate create campaign", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	created, err := h.campaignService.Create(c.Request().Context(), &domain.Campaign{
		PartnerID:       request.PartnerID,
		Name:            request.Name,
		BonusCommission: request.BonusCommission,
		DiscountCode:    request.DiscountCode,
		UTMParams:       datatypes.JSON(request.UTMParams),
		StartsAt:        request.StartsAt,
		EndsAt:          request.EndsAt,
	})
	if err != nil {
		if errors.Is(err, campaign.ErrInvalidPeriod) {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to create campaign", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(created))
}

func (h *CampaignHandler) GetAllCampaigns(c echo.Context) error {
	partnerID, err := parseOptionalUint(c, "partner_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid partner_id"})
	}

	campaigns, err := h.campaignService.GetAll(c.Request().Context(), partnerID)
	if err != nil {
		logger.Error("Failed to get all campaigns", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(campaigns))
}

func (h *CampaignHandler) GetCampaignByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid campaign id"})
	}

	found, err := h.campaignService.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to get campaign by id", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(found))
}

func (h *CampaignHandler) UpdateCampaign(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid campaign id"})
	}

	var request CampaignInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate update campaign", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	updated, err := h.campaignService.Update(c.Request().Context(), &domain.Campaign{
		ID:              uint(id),
		PartnerID:       request.PartnerID,
		Name:            request.Name,
		BonusCommission: request.BonusCommission,
		DiscountCode:    request.DiscountCode,
		UTMParams:       datatypes.JSON(request.UTMParams),
		StartsAt:        request.StartsAt,
		EndsAt:          request.EndsAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, campaign.ErrNotFound):
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		case errors.Is(err, campaign.ErrInvalidPeriod):
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to update campaign", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *CampaignHandler) CancelCampaign(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid campaign id"})
	}

	if err := h.campaignService.Cancel(c.Request().Context(), uint(id)); err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to cancel campaign", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Campaign cancelled"))
}
