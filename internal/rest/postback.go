package rest

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bioAffiliate/business/attribution"
	"bioAffiliate/domain"
	"bioAffiliate/pkg/logger"
	"bioAffiliate/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

// trackingPixel is a 1x1 transparent GIF returned on successful GET postbacks
// so networks can embed the endpoint as an image tag.
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type (
	PostbackHandler struct {
		attributionService AttributionService
		partners           PartnerFinder
		limiter            RateLimiter
		logs               PostbackLogStore
		allowUnsigned      bool
		maxPayloadBytes    int
	}

	PartnerFinder interface {
		GetByID(ctx context.Context, id uint) (domain.Partner, error)
	}

	RateLimiter interface {
		Allow(ctx context.Context, key string) (bool, error)
	}

	PostbackLogStore interface {
		Create(ctx context.Context, log *domain.PostbackLog) error
		FindByPartner(ctx context.Context, partnerID uint, limit int) ([]domain.PostbackLog, error)
	}
)

func NewPostbackHandler(attributionService AttributionService, partners PartnerFinder, limiter RateLimiter, logs PostbackLogStore, allowUnsigned bool, maxPayloadBytes int) *PostbackHandler {
	if maxPayloadBytes <= 0 {
		maxPayloadBytes = 5000
	}

	return &PostbackHandler{
		attributionService: attributionService,
		partners:           partners,
		limiter:            limiter,
		logs:               logs,
		allowUnsigned:      allowUnsigned,
		maxPayloadBytes:    maxPayloadBytes,
	}
}

// HandlePostback ingests a conversion report. POST bodies may be JSON or form
// encoded; GET carries everything in the query string and answers with a
// tracking pixel so it can be embedded as an image tag.
func (h *PostbackHandler) HandlePostback(c echo.Context) error {
	start := time.Now()
	isPixel := c.Request().Method == http.MethodGet

	var (
		rawBody []byte
		sig     attribution.Signal
		values  url.Values
	)

	if isPixel {
		values = c.QueryParams()
		sig = attribution.SignalFromValues(values)
		rawBody = []byte(c.Request().URL.RawQuery)
	} else {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "failed to read body"})
		}
		rawBody = body

		contentType := c.Request().Header.Get(echo.HeaderContentType)
		if strings.HasPrefix(contentType, echo.MIMEApplicationForm) {
			parsed, err := url.ParseQuery(string(body))
			if err != nil {
				return h.reject(c, start, nil, rawBody, http.StatusBadRequest, "invalid form body")
			}
			values = parsed
			sig = attribution.SignalFromValues(parsed)
		} else {
			var payload map[string]any
			if err := json.Unmarshal(body, &payload); err != nil {
				return h.reject(c, start, nil, rawBody, http.StatusBadRequest, "invalid json body")
			}
			sig = attribution.SignalFromJSON(payload)
		}
	}

	// The caller may identify itself out of band; the signal's own partner id
	// doubles as the identity for signature lookup.
	callerID := h.callerPartnerID(c, values, sig)

	allowed, err := h.limiter.Allow(c.Request().Context(), h.limiterKey(c, callerID))
	if err != nil {
		// A broken limiter must not drop revenue events.
		logger.Error("postback rate limiter unavailable", err)
	} else if !allowed {
		metrics.PostbacksReceived.WithLabelValues("rate_limited").Inc()
		return h.reject(c, start, callerID, rawBody, http.StatusTooManyRequests, "rate limit exceeded")
	}

	if status, msg := h.verifySignature(c, callerID, rawBody); status != 0 {
		metrics.PostbacksReceived.WithLabelValues("unauthorized").Inc()
		return h.reject(c, start, callerID, rawBody, status, msg)
	}

	result, err := h.attributionService.Attribute(c.Request().Context(), sig)
	if err != nil {
		switch {
		case errors.Is(err, attribution.ErrMissingOrderID),
			errors.Is(err, attribution.ErrInvalidAmount),
			errors.Is(err, attribution.ErrUnattributable),
			errors.Is(err, attribution.ErrPartnerNotFound):
			metrics.PostbacksReceived.WithLabelValues("rejected").Inc()
			return h.reject(c, start, callerID, rawBody, http.StatusBadRequest, err.Error())
		}
		logger.Error("postback attribution failed", err)
		metrics.PostbacksReceived.WithLabelValues("error").Inc()
		return h.reject(c, start, callerID, rawBody, http.StatusInternalServerError, "internal error")
	}

	outcome := "created"
	if result.Duplicate {
		outcome = "duplicate"
	}
	metrics.PostbacksReceived.WithLabelValues(outcome).Inc()
	metrics.PostbackLatency.Observe(time.Since(start).Seconds())

	partnerID := result.Conversion.PartnerID
	h.audit(c, start, &partnerID, rawBody, http.StatusOK)

	if isPixel {
		return h.pixel(c)
	}

	// Retried postbacks must look exactly like the first, so both the fresh
	// conversion and a duplicate answer 200 with the same body.
	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

// callerPartnerID resolves which partner's secret governs this request. The
// partner the signal would attribute to comes first, including click-based
// attribution, so a forged click_id cannot dodge that partner's signature
// requirement. The X-Partner-Id header and partner_id parameter remain as
// fallbacks for senders that identify out of band.
func (h *PostbackHandler) callerPartnerID(c echo.Context, values url.Values, sig attribution.Signal) *uint {
	if id := h.attributionService.ResolvePartner(c.Request().Context(), sig); id != nil {
		return id
	}

	if header := c.Request().Header.Get("X-Partner-Id"); header != "" {
		if id, err := parseUintString(header); err == nil {
			return &id
		}
	}

	if values != nil {
		if raw := values.Get("partner_id"); raw != "" {
			if id, err := parseUintString(raw); err == nil {
				return &id
			}
		}
	}

	return nil
}

// verifySignature enforces the per-partner HMAC contract. A partner with an
// API secret must always sign; a partner without one may only go unsigned when
// the deployment allows it. Returns a non-zero status on rejection.
func (h *PostbackHandler) verifySignature(c echo.Context, callerID *uint, message []byte) (int, string) {
	signature := c.Request().Header.Get("X-Signature")
	if signature == "" {
		signature = c.QueryParam("signature")
	}

	var secret string
	if callerID != nil {
		caller, err := h.partners.GetByID(c.Request().Context(), *callerID)
		if err == nil {
			secret = caller.APISecret
		}
	}

	if secret == "" {
		if signature == "" && !h.allowUnsigned {
			return http.StatusUnauthorized, "unsigned postbacks are not accepted"
		}
		return 0, ""
	}

	if signature == "" {
		return http.StatusUnauthorized, "signature required"
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(h.signedMessage(c, message))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return http.StatusUnauthorized, "invalid signature"
	}

	return 0, ""
}

// signedMessage is the byte string the HMAC covers: the raw body for POST,
// the sorted query string without the signature parameter for GET.
func (h *PostbackHandler) signedMessage(c echo.Context, rawBody []byte) []byte {
	if c.Request().Method != http.MethodGet {
		return rawBody
	}

	values, err := url.ParseQuery(string(rawBody))
	if err != nil {
		return rawBody
	}
	values.Del("signature")

	return []byte(values.Encode())
}

func (h *PostbackHandler) limiterKey(c echo.Context, callerID *uint) string {
	if callerID != nil {
		return "partner:" + strconv.FormatUint(uint64(*callerID), 10)
	}

	return "ip:" + c.RealIP()
}

// reject answers JSON even on the pixel route so integration mistakes are
// debuggable.
func (h *PostbackHandler) reject(c echo.Context, start time.Time, partnerID *uint, rawBody []byte, status int, message string) error {
	metrics.PostbackLatency.Observe(time.Since(start).Seconds())
	h.audit(c, start, partnerID, rawBody, status)

	return c.JSON(status, ResponseError{Message: message})
}

func (h *PostbackHandler) pixel(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	return c.Blob(http.StatusOK, "image/gif", trackingPixel)
}

// audit writes the request to the postback log. The payload is capped before
// storage; log failures never affect the response.
func (h *PostbackHandler) audit(c echo.Context, start time.Time, partnerID *uint, rawBody []byte, status int) {
	payload := rawBody
	if len(payload) > h.maxPayloadBytes {
		payload = payload[:h.maxPayloadBytes]
	}
	if !json.Valid(payload) {
		quoted, err := json.Marshal(string(payload))
		if err != nil {
			quoted = []byte(`"unrepresentable payload"`)
		}
		payload = quoted
	}

	row := domain.PostbackLog{
		PartnerID:      partnerID,
		RequestID:      uuid.NewString(),
		Method:         c.Request().Method,
		Endpoint:       c.Request().URL.Path,
		Payload:        datatypes.JSON(payload),
		ResponseStatus: status,
		DurationMs:     time.Since(start).Milliseconds(),
		RemoteIP:       c.RealIP(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.logs.Create(ctx, &row); err != nil {
			logger.Error("failed to write postback log", err)
		}
	}()
}

// GetPostbackLogs serves the audit trail for one partner, newest first.
func (h *PostbackHandler) GetPostbackLogs(c echo.Context) error {
	partnerID, err := parseOptionalUint(c, "partner_id")
	if err != nil || partnerID == nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "partner_id query parameter is required"})
	}

	limit := parseIntDefault(c, "limit", 100)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := h.logs.FindByPartner(c.Request().Context(), *partnerID, limit)
	if err != nil {
		logger.Error("failed to load postback logs", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(rows))
}

func parseUintString(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}

	return uint(id), nil
}
