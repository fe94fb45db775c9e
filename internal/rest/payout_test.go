package rest

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"bioAffiliate/business/payout"
	"bioAffiliate/domain"

	"github.com/labstack/echo/v4"
)

type fakePayoutService struct {
	createErr   error
	completeErr error
	cancelErr   error
}

func (f *fakePayoutService) Create(ctx context.Context, partnerID uint, conversionIDs []uint) (domain.Payout, error) {
	return domain.Payout{}, f.createErr
}

func (f *fakePayoutService) Complete(ctx context.Context, payoutID uint, transactionRef string) (domain.Payout, error) {
	return domain.Payout{}, f.completeErr
}

func (f *fakePayoutService) Cancel(ctx context.Context, payoutID uint) error {
	return f.cancelErr
}

func (f *fakePayoutService) GetByID(ctx context.Context, id uint) (domain.Payout, error) {
	return domain.Payout{}, nil
}

func (f *fakePayoutService) List(ctx context.Context, partnerID *uint) ([]domain.Payout, error) {
	return nil, nil
}

func (f *fakePayoutService) GetConversions(ctx context.Context, payoutID uint) ([]domain.Conversion, error) {
	return nil, nil
}

func TestCreatePayout_NoEligibleConversionsRejectedWith400(t *testing.T) {
	h := NewPayoutHandler(&fakePayoutService{createErr: payout.ErrNoEligibleConversions})

	body := []byte(`{"partner_id":7}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payouts", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	_ = h.CreatePayout(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestCompletePayout_DoubleCompleteRejectedWith400(t *testing.T) {
	h := NewPayoutHandler(&fakePayoutService{completeErr: payout.ErrAlreadyCompleted})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payouts/3/complete", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3")

	_ = h.CompletePayout(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestCancelPayout_NotPendingRejectedWith400(t *testing.T) {
	h := NewPayoutHandler(&fakePayoutService{cancelErr: payout.ErrNotPending})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payouts/3/cancel", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3")

	_ = h.CancelPayout(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}
