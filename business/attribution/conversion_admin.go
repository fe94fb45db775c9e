package attribution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bioAffiliate/domain"

	"gorm.io/gorm"
)

var (
	ErrConversionNotFound = errors.New("conversion not found")
	ErrInvalidTransition  = errors.New("invalid conversion status transition")
)

// Approve moves a pending conversion into the payout-eligible pool.
func (s *attributionService) Approve(ctx context.Context, id uint) error {
	return s.transition(ctx, id, domain.ConversionStatusApproved)
}

func (s *attributionService) Reject(ctx context.Context, id uint) error {
	return s.transition(ctx, id, domain.ConversionStatusRejected)
}

// Reverse undoes an approved conversion, e.g. after a refund on the partner
// side. Paid conversions stay paid; reversal is only valid before settlement.
func (s *attributionService) Reverse(ctx context.Context, id uint) error {
	return s.transition(ctx, id, domain.ConversionStatusReversed)
}

func (s *attributionService) transition(ctx context.Context, id uint, target string) error {
	conversion, err := s.conversionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConversionNotFound
		}
		return fmt.Errorf("failed to load conversion: %w", err)
	}

	if !transitionAllowed(conversion, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, conversion.Status, target)
	}

	var approvedAt *time.Time
	if target == domain.ConversionStatusApproved {
		now := time.Now()
		approvedAt = &now
	}

	return s.conversionRepo.UpdateStatus(ctx, id, target, approvedAt)
}

func transitionAllowed(c domain.Conversion, target string) bool {
	switch target {
	case domain.ConversionStatusApproved, domain.ConversionStatusRejected:
		return c.Status == domain.ConversionStatusPending
	case domain.ConversionStatusReversed:
		// A conversion already settled into a payout cannot be reversed.
		return c.Status == domain.ConversionStatusApproved && c.PayoutStatus == domain.PayoutStatusUnpaid
	default:
		return false
	}
}

func (s *attributionService) GetByID(ctx context.Context, id uint) (domain.Conversion, error) {
	conversion, err := s.conversionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Conversion{}, ErrConversionNotFound
		}
		return domain.Conversion{}, err
	}

	return conversion, nil
}

func (s *attributionService) List(ctx context.Context, filter ConversionFilter) ([]domain.Conversion, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}

	return s.conversionRepo.Find(ctx, filter)
}
