package rest

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"bioAffiliate/business/attribution"

	"github.com/labstack/echo/v4"
)

func TestCreateConversion_UnattributableRejectedWith400(t *testing.T) {
	attrib := &fakeAttributionService{err: attribution.ErrUnattributable}
	h := NewConversionHandler(attrib)

	body := []byte(`{"order_id":"ORD-M1","amount":50}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversions", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	_ = h.CreateConversion(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestApproveConversion_InvalidTransitionRejectedWith400(t *testing.T) {
	attrib := &fakeAttributionService{transitionErr: attribution.ErrInvalidTransition}
	h := NewConversionHandler(attrib)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversions/9/approve", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("9")

	_ = h.ApproveConversion(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}
