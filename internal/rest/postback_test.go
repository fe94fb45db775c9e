package rest

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"bioAffiliate/business/attribution"
	"bioAffiliate/domain"

	"github.com/labstack/echo/v4"
)

type fakeAttributionService struct {
	mu      sync.Mutex
	calls   int
	result  attribution.Result
	err     error
	lastSig attribution.Signal
	// clickPartner is who a click_id in the signal resolves to, mirroring
	// click-based attribution winning over an explicit partner id.
	clickPartner  *uint
	transitionErr error
}

func (f *fakeAttributionService) Attribute(ctx context.Context, sig attribution.Signal) (attribution.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastSig = sig
	return f.result, f.err
}

func (f *fakeAttributionService) ResolvePartner(ctx context.Context, sig attribution.Signal) *uint {
	if sig.ClickID != "" && f.clickPartner != nil {
		return f.clickPartner
	}
	return sig.PartnerID
}

func (f *fakeAttributionService) Approve(ctx context.Context, id uint) error { return f.transitionErr }
func (f *fakeAttributionService) Reject(ctx context.Context, id uint) error  { return f.transitionErr }
func (f *fakeAttributionService) Reverse(ctx context.Context, id uint) error { return f.transitionErr }
func (f *fakeAttributionService) GetByID(ctx context.Context, id uint) (domain.Conversion, error) {
	return domain.Conversion{}, nil
}
func (f *fakeAttributionService) List(ctx context.Context, filter attribution.ConversionFilter) ([]domain.Conversion, error) {
	return nil, nil
}

func (f *fakeAttributionService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePartnerFinder struct {
	partners map[uint]domain.Partner
}

func (f *fakePartnerFinder) GetByID(ctx context.Context, id uint) (domain.Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return domain.Partner{}, context.Canceled
	}
	return p, nil
}

type fakeLimiter struct {
	allow bool
	err   error
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return f.allow, f.err
}

type fakeLogStore struct {
	mu   sync.Mutex
	rows []domain.PostbackLog
	done chan struct{}
}

func (f *fakeLogStore) Create(ctx context.Context, row *domain.PostbackLog) error {
	f.mu.Lock()
	f.rows = append(f.rows, *row)
	f.mu.Unlock()
	if f.done != nil {
		f.done <- struct{}{}
	}
	return nil
}

func (f *fakeLogStore) FindByPartner(ctx context.Context, partnerID uint, limit int) ([]domain.PostbackLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.PostbackLog, 0, len(f.rows))
	for _, row := range f.rows {
		if row.PartnerID != nil && *row.PartnerID == partnerID {
			out = append(out, row)
		}
	}
	return out, nil
}

func sign(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

func newPostbackFixture(attrib *fakeAttributionService, allowUnsigned bool) (*PostbackHandler, *fakeLogStore) {
	partners := &fakePartnerFinder{partners: map[uint]domain.Partner{
		1: {ID: 1, CompanyName: "BenchLab", APISecret: "topsecret"},
		2: {ID: 2, CompanyName: "OpenReagents"},
	}}
	logs := &fakeLogStore{}
	h := NewPostbackHandler(attrib, partners, &fakeLimiter{allow: true}, logs, allowUnsigned, 5000)
	return h, logs
}

func doPostback(h *PostbackHandler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e := echo.New()
	c := e.NewContext(req, rec)
	_ = h.HandlePostback(c)
	return rec
}

func TestPostback_SignedJSONCreatesConversion(t *testing.T) {
	attrib := &fakeAttributionService{result: attribution.Result{
		ConversionID: 42,
		Conversion:   domain.Conversion{ID: 42, PartnerID: 1, OrderID: "ORD-1"},
	}}
	h, _ := newPostbackFixture(attrib, false)

	body := []byte(`{"order_id":"ORD-1","amount":199.99,"partner_id":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/postback", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Partner-Id", "1")
	req.Header.Set("X-Signature", sign("topsecret", body))

	rec := doPostback(h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if attrib.callCount() != 1 {
		t.Fatalf("attribute calls = %d, want 1", attrib.callCount())
	}
	if attrib.lastSig.OrderID != "ORD-1" {
		t.Errorf("order id = %q, want ORD-1", attrib.lastSig.OrderID)
	}
	if attrib.lastSig.Amount == nil || *attrib.lastSig.Amount != 199.99 {
		t.Errorf("amount not parsed from payload")
	}
}

func TestPostback_InvalidSignatureRejected(t *testing.T) {
	attrib := &fakeAttributionService{}
	h, _ := newPostbackFixture(attrib, true)

	body := []byte(`{"order_id":"ORD-2","amount":50,"partner_id":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/postback", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Partner-Id", "1")
	req.Header.Set("X-Signature", "deadbeef")

	rec := doPostback(h, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if attrib.callCount() != 0 {
		t.Fatalf("attribute was called on an unauthenticated request")
	}
}

func TestPostback_MissingSignatureWithSecretRejected(t *testing.T) {
	// AllowUnsigned only covers partners without a secret; partner 1 has one.
	attrib := &fakeAttributionService{}
	h, _ := newPostbackFixture(attrib, true)

	body := []byte(`{"order_id":"ORD-3","amount":10,"partner_id":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/postback", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Partner-Id", "1")

	rec := doPostback(h, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if attrib.callCount() != 0 {
		t.Fatalf("attribute was called without a signature")
	}
}

func TestPostback_UnsignedRejectedWhenDisallowed(t *testing.T) {
	attrib := &fakeAttributionService{}
	h, _ := newPostbackFixture(attrib, false)

	body := []byte(`{"order_id":"ORD-4","amount":10,"partner_id":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/postback", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Partner-Id", "2")

	rec := doPostback(h, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestPostback_UnsignedAllowedForPartnerWithoutSecret(t *testing.T) {
	attrib := &fakeAttributionService{result: attribution.Result{
		ConversionID: 7,
		Conversion:   domain.Conversion{ID: 7, PartnerID: 2, OrderID: "ORD-5"},
	}}
	h, _ := newPostbackFixture(attrib, true)

	body := []byte(`{"order_id":"ORD-5","amount":25,"partner_id":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/postback", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doPostback(h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestPostback_UnsignedClickOnlyRejectedForSecretPartner(t *testing.T) {
	// The signal names no partner, but its click resolves to partner 1, whose
	// secret makes a signature mandatory. Leaving partner_id out must not
	// dodge the check.
	secretPartner := uint(1)
	attrib := &fakeAttributionService{clickPartner: &secretPartner}
	h, _ := newPostbackFixture(attrib, true)

	body := []byte(`{"order_id":"ORD-BY1","amount":100,"click_id":"42"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/postback", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doPostback(h, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusUnauthorized, rec.Body.String())
	}
	if attrib.callCount() != 0 {
		t.Fatalf("attribute was called on an unsigned click-only request")
	}
}

func TestPostback_SignedClickOnlyAccepted(t *testing.T) {
	secretPartner := uint(1)
	attrib := &fakeAttributionService{
		clickPartner: &secretPartner,
		result: attribution.Result{
			ConversionID: 13,
			Conversion:   domain.Conversion{ID: 13, PartnerID: 1, OrderID: "ORD-BY2"},
		},
	}
	h, _ := newPostbackFixture(attrib, false)

	body := []byte(`{"order_id":"ORD-BY2","amount":100,"click_id":"42"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/postback", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Signature", sign("topsecret", body))

	rec := doPostback(h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestPostback_GetReturnsPixel(t *testing.T) {
	attrib := &fakeAttributionService{result: attribution.Result{
		ConversionID: 9,
		Conversion:   domain.Conversion{ID: 9, PartnerID: 2, OrderID: "ORD-6"},
	}}
	h, _ := newPostbackFixture(attrib, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/postback?order_id=ORD-6&amount=12.50&partner_id=2", nil)

	rec := doPostback(h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got := rec.Header().Get(echo.HeaderContentType); got != "image/gif" {
		t.Errorf("content type = %q, want image/gif", got)
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Errorf("cache control = %q, want no-store", cc)
	}
	if !bytes.Equal(rec.Body.Bytes(), trackingPixel) {
		t.Errorf("body is not the tracking pixel (%d bytes)", rec.Body.Len())
	}
}

func TestPostback_SignedGetPixel(t *testing.T) {
	attrib := &fakeAttributionService{result: attribution.Result{
		ConversionID: 11,
		Conversion:   domain.Conversion{ID: 11, PartnerID: 1, OrderID: "ORD-7"},
	}}
	h, _ := newPostbackFixture(attrib, false)

	// The GET contract signs the sorted query string without the signature
	// parameter itself.
	query := "amount=30&order_id=ORD-7&partner_id=1"
	sig := sign("topsecret", []byte(query))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/postback?"+query+"&signature="+sig, nil)

	rec := doPostback(h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got := rec.Header().Get(echo.HeaderContentType); got != "image/gif" {
		t.Errorf("content type = %q, want image/gif", got)
	}
}

func TestPostback_InvalidAmountRejected(t *testing.T) {
	attrib := &fakeAttributionService{err: attribution.ErrInvalidAmount}
	h, _ := newPostbackFixture(attrib, true)

	body := []byte(`{"order_id":"ORD-8","amount":-5,"partner_id":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/postback", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doPostback(h, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPostback_UnattributableRejectedWith400(t *testing.T) {
	attrib := &fakeAttributionService{err: attribution.ErrUnattributable}
	h, _ := newPostbackFixture(attrib, true)

	body := []byte(`{"order_id":"ORD-NA","amount":10}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/postback", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doPostback(h, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPostback_DuplicateReturnsExistingConversion(t *testing.T) {
	attrib := &fakeAttributionService{result: attribution.Result{
		ConversionID: 42,
		Duplicate:    true,
		Conversion:   domain.Conversion{ID: 42, PartnerID: 2, OrderID: "ORD-9"},
	}}
	h, _ := newPostbackFixture(attrib, true)

	for i := 0; i < 3; i++ {
		body := []byte(`{"order_id":"ORD-9","amount":80,"partner_id":2}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/postback", bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

		rec := doPostback(h, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("retry %d: status = %d, want %d", i, rec.Code, http.StatusOK)
		}

		if !strings.Contains(rec.Body.String(), `"conversion_id":42`) {
			t.Errorf("retry %d: response does not reference conversion 42: %s", i, rec.Body.String())
		}
	}
}

func TestPostback_RateLimited(t *testing.T) {
	attrib := &fakeAttributionService{}
	partners := &fakePartnerFinder{partners: map[uint]domain.Partner{}}
	h := NewPostbackHandler(attrib, partners, &fakeLimiter{allow: false}, &fakeLogStore{}, true, 5000)

	body := []byte(`{"order_id":"ORD-10","amount":5,"partner_id":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/postback", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doPostback(h, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if attrib.callCount() != 0 {
		t.Fatalf("attribute was called on a rate limited request")
	}
}

func TestPostback_LimiterFailureDoesNotDropEvents(t *testing.T) {
	attrib := &fakeAttributionService{result: attribution.Result{
		ConversionID: 5,
		Conversion:   domain.Conversion{ID: 5, PartnerID: 2, OrderID: "ORD-11"},
	}}
	partners := &fakePartnerFinder{partners: map[uint]domain.Partner{2: {ID: 2}}}
	h := NewPostbackHandler(attrib, partners, &fakeLimiter{err: context.DeadlineExceeded}, &fakeLogStore{}, true, 5000)

	body := []byte(`{"order_id":"ORD-11","amount":5,"partner_id":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/postback", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := doPostback(h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestPostback_AuditLogWritten(t *testing.T) {
	attrib := &fakeAttributionService{result: attribution.Result{
		ConversionID: 3,
		Conversion:   domain.Conversion{ID: 3, PartnerID: 2, OrderID: "ORD-12"},
	}}
	partners := &fakePartnerFinder{partners: map[uint]domain.Partner{2: {ID: 2}}}
	logs := &fakeLogStore{done: make(chan struct{}, 1)}
	h := NewPostbackHandler(attrib, partners, &fakeLimiter{allow: true}, logs, true, 5000)

	body := []byte(`{"order_id":"ORD-12","amount":60,"partner_id":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/postback", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	doPostback(h, req)

	select {
	case <-logs.done:
	case <-time.After(2 * time.Second):
		t.Fatal("postback log was never written")
	}

	logs.mu.Lock()
	defer logs.mu.Unlock()
	row := logs.rows[0]
	if row.Method != http.MethodPost {
		t.Errorf("method = %q, want POST", row.Method)
	}
	if row.ResponseStatus != http.StatusOK {
		t.Errorf("response status = %d, want %d", row.ResponseStatus, http.StatusOK)
	}
	if row.PartnerID == nil || *row.PartnerID != 2 {
		t.Errorf("partner id not recorded on audit row")
	}
}

func TestPostback_FormEncodedBody(t *testing.T) {
	attrib := &fakeAttributionService{result: attribution.Result{
		ConversionID: 6,
		Conversion:   domain.Conversion{ID: 6, PartnerID: 2, OrderID: "ORD-13"},
	}}
	h, _ := newPostbackFixture(attrib, true)

	form := "order_id=ORD-13&amount=99.95&partner_id=2&conversion_type=lead"
	req := httptest.NewRequest(http.MethodPost, "/api/v1/postback", strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)

	rec := doPostback(h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if attrib.lastSig.Type != domain.ConversionTypeLead {
		t.Errorf("type = %q, want lead", attrib.lastSig.Type)
	}
}
