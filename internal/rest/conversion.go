package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"bioAffiliate/business/attribution"
	"bioAffiliate/domain"
	"bioAffiliate/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	ConversionHandler struct {
		validate           *validator.Validate
		attributionService AttributionService
	}

	AttributionService interface {
		Attribute(ctx context.Context, sig attribution.Signal) (attribution.Result, error)
		// ResolvePartner reports the partner a signal would attribute to
		// without recording anything.
		ResolvePartner(ctx context.Context, sig attribution.Signal) *uint
		Approve(ctx context.Context, id uint) error
		Reject(ctx context.Context, id uint) error
		Reverse(ctx context.Context, id uint) error
		GetByID(ctx context.Context, id uint) (domain.Conversion, error)
		List(ctx context.Context, filter attribution.ConversionFilter) ([]domain.Conversion, error)
	}

	// ConversionInput is the manual entry form for conversions reported outside
	// the postback channel, e.g. from a partner spreadsheet.
	ConversionInput struct {
		OrderID       string   `json:"order_id" validate:"required"`
		TransactionID string   `json:"transaction_id"`
		Amount        *float64 `json:"amount"`
		Currency      string   `json:"currency" validate:"omitempty,len=3"`
		ClickID       string   `json:"click_id"`
		PartnerID     *uint    `json:"partner_id"`
		ProductID     *uint    `json:"product_id"`
		Type          string   `json:"type" validate:"omitempty,oneof=sale lead signup trial download"`
	}
)

func NewConversionHandler(attributionService AttributionService) *ConversionHandler {
	return &ConversionHandler{
		validate:           validator.New(),
		attributionService: attributionService,
	}
}

func (h *ConversionHandler) CreateConversion(c echo.Context) error {
	var request ConversionInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate create conversion", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	result, err := h.attributionService.Attribute(c.Request().Context(), attribution.Signal{
		OrderID:       request.OrderID,
		TransactionID: request.TransactionID,
		Amount:        request.Amount,
		Currency:      request.Currency,
		ClickID:       request.ClickID,
		PartnerID:     request.PartnerID,
		ProductID:     request.ProductID,
		Type:          request.Type,
	})
	if err != nil {
		switch {
		case errors.Is(err, attribution.ErrMissingOrderID),
			errors.Is(err, attribution.ErrInvalidAmount),
			errors.Is(err, attribution.ErrUnattributable),
			errors.Is(err, attribution.ErrPartnerNotFound):
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to create conversion", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	if result.Duplicate {
		return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(result))
}

func (h *ConversionHandler) GetConversions(c echo.Context) error {
	partnerID, err := parseOptionalUint(c, "partner_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid partner_id"})
	}

	conversions, err := h.attributionService.List(c.Request().Context(), attribution.ConversionFilter{
		PartnerID:    partnerID,
		Status:       c.QueryParam("status"),
		PayoutStatus: c.QueryParam("payout_status"),
		Limit:        parseIntDefault(c, "limit", 100),
	})
	if err != nil {
		logger.Error("Failed to list conversions", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(conversions))
}

func (h *ConversionHandler) GetConversionByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid conversion id"})
	}

	found, err := h.attributionService.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, attribution.ErrConversionNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to get conversion by id", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(found))
}

func (h *ConversionHandler) ApproveConversion(c echo.Context) error {
	return h.transition(c, h.attributionService.Approve, "Conversion approved")
}

func (h *ConversionHandler) RejectConversion(c echo.Context) error {
	return h.transition(c, h.attributionService.Reject, "Conversion rejected")
}

func (h *ConversionHandler) ReverseConversion(c echo.Context) error {
	return h.transition(c, h.attributionService.Reverse, "Conversion reversed")
}

func (h *ConversionHandler) transition(c echo.Context, op func(context.Context, uint) error, okMessage string) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid conversion id"})
	}

	if err := op(c.Request().Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, attribution.ErrConversionNotFound):
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		case errors.Is(err, attribution.ErrInvalidTransition):
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to transition conversion", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(okMessage))
}
