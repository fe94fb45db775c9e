package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bioAffiliate/business/link"
	"bioAffiliate/domain"
	"bioAffiliate/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	LinkHandler struct {
		validate     *validator.Validate
		linkService  LinkService
		clickService ClickService
	}

	LinkService interface {
		Create(ctx context.Context, input link.CreateInput) (link.CreatedLink, error)
		GetByPartner(ctx context.Context, partnerID uint) ([]domain.Link, error)
		GetByID(ctx context.Context, id uint) (domain.Link, error)
		UpdateStatus(ctx context.Context, id uint, status string) error
		Delete(ctx context.Context, id uint) error
	}

	ClickService interface {
		GetByPartner(ctx context.Context, partnerID uint, limit int) ([]domain.Click, error)
		GetByLink(ctx context.Context, linkID uint, limit int) ([]domain.Click, error)
	}

	LinkInput struct {
		PartnerID  uint       `json:"partner_id" validate:"required"`
		ProductID  *uint      `json:"product_id"`
		CampaignID *uint      `json:"campaign_id"`
		CustomURL  string     `json:"custom_url" validate:"omitempty,url"`
		Name       string     `json:"name"`
		ExpiresAt  *time.Time `json:"expires_at"`
	}

	LinkStatusInput struct {
		Status string `json:"status" validate:"required,oneof=active paused expired"`
	}
)

func NewLinkHandler(linkService LinkService, clickService ClickService) *LinkHandler {
	return &LinkHandler{
		validate:     validator.New(),
		linkService:  linkService,
		clickService: clickService,
	}
}

func (h *LinkHandler) CreateLink(c echo.Context) error {
	var request LinkInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate create link", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	created, err := h.linkService.Create(c.Request().Context(), link.CreateInput{
		PartnerID:  request.PartnerID,
		ProductID:  request.ProductID,
		CampaignID: request.CampaignID,
		CustomURL:  request.CustomURL,
		Name:       request.Name,
		ExpiresAt:  request.ExpiresAt,
	})
	if err != nil {
		if errors.Is(err, link.ErrNoDestination) {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to create link", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(created))
}

func (h *LinkHandler) GetLinks(c echo.Context) error {
	partnerID, err := parseOptionalUint(c, "partner_id")
	if err != nil || partnerID == nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "partner_id query parameter is required"})
	}

	links, err := h.linkService.GetByPartner(c.Request().Context(), *partnerID)
	if err != nil {
		logger.Error("Failed to get links by partner", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(links))
}

func (h *LinkHandler) GetLinkByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid link id"})
	}

	found, err := h.linkService.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, link.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to get link by id", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(found))
}

func (h *LinkHandler) UpdateLinkStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid link id"})
	}

	var request LinkStatusInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.linkService.UpdateStatus(c.Request().Context(), uint(id), request.Status); err != nil {
		if errors.Is(err, link.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to update link status", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Link status updated"))
}

func (h *LinkHandler) DeleteLink(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid link id"})
	}

	if err := h.linkService.Delete(c.Request().Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, link.ErrNotFound):
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		case errors.Is(err, link.ErrHasConversions):
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to delete link", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Link deleted"))
}

// GetLinkClicks lists the raw click log of one link, bots included.
func (h *LinkHandler) GetLinkClicks(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid link id"})
	}

	limit := parseIntDefault(c, "limit", 100)

	clicks, err := h.clickService.GetByLink(c.Request().Context(), uint(id), limit)
	if err != nil {
		logger.Error("Failed to get clicks by link", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(clicks))
}

// GetPartnerClicks lists the raw click log of one partner, bots included.
func (h *LinkHandler) GetPartnerClicks(c echo.Context) error {
	partnerID, err := parseOptionalUint(c, "partner_id")
	if err != nil || partnerID == nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "partner_id query parameter is required"})
	}

	limit := parseIntDefault(c, "limit", 100)

	clicks, err := h.clickService.GetByPartner(c.Request().Context(), *partnerID, limit)
	if err != nil {
		logger.Error("Failed to get clicks by partner", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(clicks))
}
