package rest

import (
	"context"
	"errors"
	"net/http"

	"bioAffiliate/business/click"
	"bioAffiliate/business/link"
	"bioAffiliate/domain"

	"github.com/labstack/echo/v4"
)

type (
	RedirectHandler struct {
		links  LinkResolver
		clicks ClickRecorder
	}

	LinkResolver interface {
		Resolve(ctx context.Context, code string) (domain.Link, error)
	}

	ClickRecorder interface {
		RecordAsync(link domain.Link, meta click.Meta)
	}
)

func NewRedirectHandler(links LinkResolver, clicks ClickRecorder) *RedirectHandler {
	return &RedirectHandler{
		links:  links,
		clicks: clicks,
	}
}

// Redirect resolves a short code and sends the visitor to the destination.
// The click write happens off the request path so a slow database never slows
// the redirect down.
func (h *RedirectHandler) Redirect(c echo.Context) error {
	code := c.Param("code")

	resolved, err := h.links.Resolve(c.Request().Context(), code)
	if err != nil {
		if errors.Is(err, link.ErrNotFound) || errors.Is(err, link.ErrExpired) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: "link not found"})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	h.clicks.RecordAsync(resolved, click.Meta{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
		Referer:   c.Request().Referer(),
		Country:   c.Request().Header.Get("CF-IPCountry"),
	})

	return c.Redirect(http.StatusFound, resolved.DestinationURL)
}
