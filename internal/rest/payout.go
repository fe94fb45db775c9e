package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"bioAffiliate/business/payout"
	"bioAffiliate/domain"
	"bioAffiliate/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	PayoutHandler struct {
		validate      *validator.Validate
		payoutService PayoutService
	}

	PayoutService interface {
		Create(ctx context.Context, partnerID uint, conversionIDs []uint) (domain.Payout, error)
		Complete(ctx context.Context, payoutID uint, transactionRef string) (domain.Payout, error)
		Cancel(ctx context.Context, payoutID uint) error
		GetByID(ctx context.Context, id uint) (domain.Payout, error)
		List(ctx context.Context, partnerID *uint) ([]domain.Payout, error)
		GetConversions(ctx context.Context, payoutID uint) ([]domain.Conversion, error)
	}

	PayoutInput struct {
		PartnerID uint `json:"partner_id" validate:"required"`
		// ConversionIDs narrows the batch; empty means every approved unpaid
		// conversion of the partner.
		ConversionIDs []uint `json:"conversion_ids"`
	}

	PayoutCompleteInput struct {
		TransactionRef string `json:"transaction_ref"`
	}
)

func NewPayoutHandler(payoutService PayoutService) *PayoutHandler {
	return &PayoutHandler{
		validate:      validator.New(),
		payoutService: payoutService,
	}
}

func (h *PayoutHandler) CreatePayout(c echo.Context) error {
	var request PayoutInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate create payout", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	created, err := h.payoutService.Create(c.Request().Context(), request.PartnerID, request.ConversionIDs)
	if err != nil {
		if errors.Is(err, payout.ErrNoEligibleConversions) {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to create payout", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(created))
}

func (h *PayoutHandler) CompletePayout(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid payout id"})
	}

	var request PayoutCompleteInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	completed, err := h.payoutService.Complete(c.Request().Context(), uint(id), request.TransactionRef)
	if err != nil {
		switch {
		case errors.Is(err, payout.ErrNotFound):
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		case errors.Is(err, payout.ErrAlreadyCompleted), errors.Is(err, payout.ErrNotPending):
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to complete payout", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(completed))
}

func (h *PayoutHandler) CancelPayout(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid payout id"})
	}

	if err := h.payoutService.Cancel(c.Request().Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, payout.ErrNotFound):
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		case errors.Is(err, payout.ErrNotPending):
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to cancel payout", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Payout cancelled"))
}

func (h *PayoutHandler) GetPayoutByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid payout id"})
	}

	found, err := h.payoutService.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, payout.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to get payout by id", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(found))
}

func (h *PayoutHandler) GetAllPayouts(c echo.Context) error {
	partnerID, err := parseOptionalUint(c, "partner_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid partner_id"})
	}

	payouts, err := h.payoutService.List(c.Request().Context(), partnerID)
	if err != nil {
		logger.Error("Failed to list payouts", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(payouts))
}

func (h *PayoutHandler) GetPayoutConversions(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid payout id"})
	}

	conversions, err := h.payoutService.GetConversions(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, payout.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to get payout conversions", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(conversions))
}
