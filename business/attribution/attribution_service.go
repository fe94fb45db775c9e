package attribution

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bioAffiliate/business/commission"
	"bioAffiliate/domain"
	"bioAffiliate/pkg/logger"
	"bioAffiliate/pkg/metrics"

	"gorm.io/gorm"
)

var (
	ErrMissingOrderID  = errors.New("order id is required")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrUnattributable  = errors.New("conversion cannot be attributed to any partner")
	ErrPartnerNotFound = errors.New("partner not found")
)

type ConversionRepository interface {
	// Create persists the conversion and bumps the link conversion counter in
	// one transaction.
	Create(ctx context.Context, conversion *domain.Conversion) error
	FindByPartnerOrder(ctx context.Context, partnerID uint, orderID string) (domain.Conversion, error)
	FindByID(ctx context.Context, id uint) (domain.Conversion, error)
	UpdateStatus(ctx context.Context, id uint, status string, approvedAt *time.Time) error
	Find(ctx context.Context, filter ConversionFilter) ([]domain.Conversion, error)
}

type ConversionFilter struct {
	PartnerID    *uint
	Status       string
	PayoutStatus string
	Limit        int
}

type ClickRepository interface {
	// FindByID preloads the click's link with its partner and campaign.
	FindByID(ctx context.Context, id uint) (domain.Click, error)
}

type PartnerRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Partner, error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Product, error)
}

type attributionService struct {
	conversionRepo ConversionRepository
	clickRepo      ClickRepository
	partnerRepo    PartnerRepository
	productRepo    ProductRepository
}

func NewAttributionService(conversionRepo ConversionRepository, clickRepo ClickRepository, partnerRepo PartnerRepository, productRepo ProductRepository) *attributionService {
	return &attributionService{
		conversionRepo: conversionRepo,
		clickRepo:      clickRepo,
		partnerRepo:    partnerRepo,
		productRepo:    productRepo,
	}
}

// Result reports the conversion a signal resolved to. Duplicate means the
// order was already recorded and no new row was created.
type Result struct {
	ConversionID uint              `json:"conversion_id"`
	Duplicate    bool              `json:"duplicate"`
	Conversion   domain.Conversion `json:"conversion"`
}

// Attribute matches a conversion signal to a partner and records it.
//
// Click-based attribution wins over an explicit partner id: if the signal
// carries a click id that resolves to a stored click inside its partner's
// attribution window, the conversion belongs to that click's partner even if
// the signal names a different one. An out-of-window click falls through to
// the explicit partner, then to ErrUnattributable.
func (s *attributionService) Attribute(ctx context.Context, sig Signal) (Result, error) {
	if sig.OrderID == "" {
		return Result{}, ErrMissingOrderID
	}
	if sig.Type == "" {
		sig.Type = domain.ConversionTypeSale
	}
	if sig.Type == domain.ConversionTypeSale {
		if sig.Amount == nil || *sig.Amount <= 0 {
			return Result{}, ErrInvalidAmount
		}
	} else if sig.Amount != nil && *sig.Amount <= 0 {
		return Result{}, ErrInvalidAmount
	}

	now := time.Now()

	var (
		partner  domain.Partner
		linkID   *uint
		clickID  *uint
		product  *domain.Product
		campaign *domain.Campaign
	)

	matched := false
	if sig.ClickID != "" {
		clickRow, ok := s.matchClick(ctx, sig.ClickID, now)
		if ok {
			partner = clickRow.Link.Partner
			linkID = &clickRow.LinkID
			clickID = &clickRow.ID
			campaign = clickRow.Link.Campaign
			if clickRow.ProductID != nil {
				sig.ProductID = clickRow.ProductID
			}
			matched = true
		}
	}

	if !matched {
		if sig.PartnerID == nil {
			return Result{}, ErrUnattributable
		}

		found, err := s.partnerRepo.FindByID(ctx, *sig.PartnerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Result{}, ErrPartnerNotFound
			}
			return Result{}, fmt.Errorf("failed to load partner: %w", err)
		}
		partner = found
	}

	// Idempotency pre-check: a retried postback returns the winner's id.
	existing, err := s.conversionRepo.FindByPartnerOrder(ctx, partner.ID, sig.OrderID)
	if err == nil {
		return Result{ConversionID: existing.ID, Duplicate: true, Conversion: existing}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{}, fmt.Errorf("failed to check existing conversion: %w", err)
	}

	if sig.ProductID != nil {
		if p, err := s.productRepo.FindByID(ctx, *sig.ProductID); err == nil {
			product = &p
		}
	}

	conversion := domain.Conversion{
		PartnerID:        partner.ID,
		ProductID:        sig.ProductID,
		LinkID:           linkID,
		ClickID:          clickID,
		OrderID:          sig.OrderID,
		TransactionID:    sig.TransactionID,
		Type:             sig.Type,
		SaleAmount:       sig.Amount,
		Currency:         sig.Currency,
		CommissionAmount: commission.Calculate(partner, product, campaign, sig.Amount, now),
		Status:           domain.ConversionStatusPending,
		PayoutStatus:     domain.PayoutStatusUnpaid,
		ConvertedAt:      now,
	}

	if err := s.conversionRepo.Create(ctx, &conversion); err != nil {
		// Two postbacks for the same order can race past the pre-check; the
		// unique index on (partner_id, order_id) picks the winner.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			winner, ferr := s.conversionRepo.FindByPartnerOrder(ctx, partner.ID, sig.OrderID)
			if ferr != nil {
				return Result{}, fmt.Errorf("duplicate conversion but winner not found: %w", ferr)
			}
			return Result{ConversionID: winner.ID, Duplicate: true, Conversion: winner}, nil
		}
		logger.Error("failed to create conversion", err)
		return Result{}, fmt.Errorf("failed to create conversion: %w", err)
	}

	metrics.ConversionsCreated.Inc()
	logger.Info("conversion attributed",
		"conversion_id", conversion.ID,
		"partner_id", partner.ID,
		"order_id", sig.OrderID,
		"commission", conversion.CommissionAmount,
		"via_click", matched,
	)

	return Result{ConversionID: conversion.ID, Conversion: conversion}, nil
}

// ResolvePartner reports the partner a signal would attribute to, without
// recording anything: the click's partner when the click is still inside its
// window, otherwise the signal's explicit partner. The postback gateway uses
// this to pick the signing secret before any row is written.
func (s *attributionService) ResolvePartner(ctx context.Context, sig Signal) *uint {
	if sig.ClickID != "" {
		if clickRow, ok := s.matchClick(ctx, sig.ClickID, time.Now()); ok {
			id := clickRow.Link.PartnerID
			return &id
		}
	}

	return sig.PartnerID
}

// matchClick resolves a click id token to a stored click that is still inside
// its partner's attribution window.
func (s *attributionService) matchClick(ctx context.Context, token string, now time.Time) (domain.Click, bool) {
	id, err := strconv.ParseUint(token, 10, 32)
	if err != nil {
		return domain.Click{}, false
	}

	clickRow, err := s.clickRepo.FindByID(ctx, uint(id))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("failed to load click for attribution", err)
		}
		return domain.Click{}, false
	}

	window := clickRow.Link.Partner.AttributionWindow()
	if now.Sub(clickRow.CreatedAt) > window {
		logger.Info("click outside attribution window",
			"click_id", clickRow.ID,
			"age_hours", now.Sub(clickRow.CreatedAt).Hours(),
		)
		return domain.Click{}, false
	}

	return clickRow, true
}
