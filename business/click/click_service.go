package click

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"bioAffiliate/domain"
	"bioAffiliate/pkg/logger"
	"bioAffiliate/pkg/metrics"
)

type ClickRepository interface {
	Create(ctx context.Context, click *domain.Click) error
	FindByPartner(ctx context.Context, partnerID uint, limit int) ([]domain.Click, error)
	FindByLink(ctx context.Context, linkID uint, limit int) ([]domain.Click, error)
}

type clickService struct {
	clickRepo ClickRepository
}

func NewClickService(clickRepo ClickRepository) *clickService {
	return &clickService{
		clickRepo: clickRepo,
	}
}

// Meta carries the request context of an inbound redirect hit.
type Meta struct {
	IP        string
	UserAgent string
	Referer   string
	Country   string
}

// Record persists a click event against an already-resolved link. The redirect
// handler resolves once and hands the link in so the hot path does a single
// lookup.
func (s *clickService) Record(ctx context.Context, link domain.Link, meta Meta) (domain.Click, error) {
	clickRow := domain.Click{
		LinkID:     link.ID,
		PartnerID:  link.PartnerID,
		ProductID:  link.ProductID,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
		Referer:    meta.Referer,
		DeviceType: deviceType(meta.UserAgent),
		Browser:    browserFamily(meta.UserAgent),
		Country:    meta.Country,
		IsBot:      isBot(meta.UserAgent),
		CreatedAt:  time.Now(),
	}

	if err := s.clickRepo.Create(ctx, &clickRow); err != nil {
		return domain.Click{}, fmt.Errorf("failed to save click: %w", err)
	}

	metrics.ClicksRecorded.WithLabelValues(strconv.FormatBool(clickRow.IsBot)).Inc()

	return clickRow, nil
}

// RecordAsync persists the click without blocking the caller. A write failure
// is logged and swallowed: telemetry must never break the redirect.
func (s *clickService) RecordAsync(link domain.Link, meta Meta) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := s.Record(ctx, link, meta); err != nil {
			logger.Error("failed to record click", "short_code", link.ShortCode, "error", err)
		}
	}()
}

// GetByPartner returns the raw click listing, bots included.
func (s *clickService) GetByPartner(ctx context.Context, partnerID uint, limit int) ([]domain.Click, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	return s.clickRepo.FindByPartner(ctx, partnerID, limit)
}

func (s *clickService) GetByLink(ctx context.Context, linkID uint, limit int) ([]domain.Click, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	return s.clickRepo.FindByLink(ctx, linkID, limit)
}
