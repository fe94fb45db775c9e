package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"bioAffiliate/business/product"
	"bioAffiliate/domain"
	"bioAffiliate/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	ProductHandler struct {
		validate       *validator.Validate
		productService ProductService
	}

	ProductService interface {
		Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
		GetAll(ctx context.Context, partnerID *uint) ([]domain.Product, error)
		GetByID(ctx context.Context, id uint) (domain.Product, error)
		Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
		Delete(ctx context.Context, id uint) error
	}

	ProductInput struct {
		PartnerID          uint     `json:"partner_id" validate:"required"`
		Name               string   `json:"name" validate:"required"`
		Slug               string   `json:"slug" validate:"required,min=2,max=128"`
		Category           string   `json:"category"`
		Price              float64  `json:"price" validate:"gte=0"`
		URL                string   `json:"url" validate:"omitempty,url"`
		CommissionOverride *float64 `json:"commission_override" validate:"omitempty,gte=0"`
		Status             string   `json:"status" validate:"omitempty,oneof=active inactive out_of_stock"`
	}
)

func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{
		validate:       validator.New(),
		productService: productService,
	}
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var request ProductInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate create product", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	created, err := h.productService.Create(c.Request().Context(), &domain.Product{
		PartnerID:          request.PartnerID,
		Name:               request.Name,
		Slug:               request.Slug,
		Category:           request.Category,
		Price:              request.Price,
		URL:                request.URL,
		CommissionOverride: request.CommissionOverride,
		Status:             request.Status,
	})
	if err != nil {
		if errors.Is(err, product.ErrSlugTaken) {
			return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to create product", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(created))
}

func (h *ProductHandler) GetAllProducts(c echo.Context) error {
	partnerID, err := parseOptionalUint(c, "partner_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid partner_id"})
	}

	products, err := h.productService.GetAll(c.Request().Context(), partnerID)
	if err != nil {
		logger.Error("Failed to get all products", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}

func (h *ProductHandler) GetProductByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	found, err := h.productService.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to get product by id", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(found))
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	var request ProductInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate update product", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	updated, err := h.productService.Update(c.Request().Context(), &domain.Product{
		ID:                 uint(id),
		PartnerID:          request.PartnerID,
		Name:               request.Name,
		Category:           request.Category,
		Price:              request.Price,
		URL:                request.URL,
		CommissionOverride: request.CommissionOverride,
		Status:             request.Status,
	})
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to update product", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	if err := h.productService.Delete(c.Request().Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, product.ErrNotFound):
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		case errors.Is(err, product.ErrHasUnpaidConversions):
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to delete product", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Product deleted"))
}
