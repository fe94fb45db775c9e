package payout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bioAffiliate/domain"
	"bioAffiliate/pkg/logger"
	"bioAffiliate/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound              = errors.New("payout not found")
	ErrNoEligibleConversions = errors.New("no approved unpaid conversions to pay out")
	ErrAlreadyCompleted      = errors.New("payout already completed")
	ErrNotPending            = errors.New("payout is not pending")
)

type PayoutRepository interface {
	// CreateWithConversions inserts the payout and flips every selected
	// conversion to processing/payout_id in one transaction.
	CreateWithConversions(ctx context.Context, payout *domain.Payout, conversionIDs []uint) error
	// Complete marks the payout completed and its conversions paid in one
	// transaction.
	Complete(ctx context.Context, payoutID uint, transactionRef string, payoutDate time.Time) error
	// Cancel marks the payout failed and unlinks its conversions back to
	// unpaid in one transaction.
	Cancel(ctx context.Context, payoutID uint) error
	FindByID(ctx context.Context, id uint) (domain.Payout, error)
	FindAll(ctx context.Context, partnerID *uint) ([]domain.Payout, error)
	FindConversions(ctx context.Context, payoutID uint) ([]domain.Conversion, error)
}

type ConversionRepository interface {
	// FindEligible returns approved, unpaid conversions for the partner,
	// optionally restricted to an explicit id subset.
	FindEligible(ctx context.Context, partnerID uint, ids []uint) ([]domain.Conversion, error)
}

type PartnerRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Partner, error)
}

type Notifier interface {
	SendEmail(toName, toEmail, subject, message string) error
}

type payoutService struct {
	payoutRepo     PayoutRepository
	conversionRepo ConversionRepository
	partnerRepo    PartnerRepository
	notifier       Notifier
}

func NewPayoutService(payoutRepo PayoutRepository, conversionRepo ConversionRepository, partnerRepo PartnerRepository, notifier Notifier) *payoutService {
	return &payoutService{
		payoutRepo:     payoutRepo,
		conversionRepo: conversionRepo,
		partnerRepo:    partnerRepo,
		notifier:       notifier,
	}
}

// Create batches the partner's approved, unpaid conversions into a pending
// payout. Period bounds are the min/max conversion times of the batch.
func (s *payoutService) Create(ctx context.Context, partnerID uint, conversionIDs []uint) (domain.Payout, error) {
	eligible, err := s.conversionRepo.FindEligible(ctx, partnerID, conversionIDs)
	if err != nil {
		return domain.Payout{}, fmt.Errorf("failed to select eligible conversions: %w", err)
	}
	if len(eligible) == 0 {
		return domain.Payout{}, ErrNoEligibleConversions
	}

	var total float64
	periodStart := eligible[0].ConvertedAt
	periodEnd := eligible[0].ConvertedAt
	ids := make([]uint, 0, len(eligible))

	for _, c := range eligible {
		total += c.CommissionAmount
		ids = append(ids, c.ID)
		if c.ConvertedAt.Before(periodStart) {
			periodStart = c.ConvertedAt
		}
		if c.ConvertedAt.After(periodEnd) {
			periodEnd = c.ConvertedAt
		}
	}

	payout := domain.Payout{
		PartnerID:        partnerID,
		TotalCommission:  total,
		TotalConversions: int64(len(eligible)),
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		Status:           domain.PayoutBatchStatusPending,
	}

	if err := s.payoutRepo.CreateWithConversions(ctx, &payout, ids); err != nil {
		logger.Error("failed to create payout batch", err)
		return domain.Payout{}, fmt.Errorf("failed to create payout: %w", err)
	}

	metrics.PayoutsCreated.Inc()
	logger.Info("payout created",
		"payout_id", payout.ID,
		"partner_id", partnerID,
		"conversions", len(eligible),
		"total_commission", total,
	)

	return payout, nil
}

// Complete settles a pending payout: payout to completed, conversions to paid.
func (s *payoutService) Complete(ctx context.Context, payoutID uint, transactionRef string) (domain.Payout, error) {
	payout, err := s.payoutRepo.FindByID(ctx, payoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Payout{}, ErrNotFound
		}
		return domain.Payout{}, err
	}

	if payout.Status == domain.PayoutBatchStatusCompleted {
		return domain.Payout{}, ErrAlreadyCompleted
	}
	if payout.Status != domain.PayoutBatchStatusPending {
		return domain.Payout{}, ErrNotPending
	}

	if transactionRef == "" {
		transactionRef = uuid.New().String()
	}
	payoutDate := time.Now()

	if err := s.payoutRepo.Complete(ctx, payoutID, transactionRef, payoutDate); err != nil {
		logger.Error("failed to complete payout", err)
		return domain.Payout{}, fmt.Errorf("failed to complete payout: %w", err)
	}

	payout.Status = domain.PayoutBatchStatusCompleted
	payout.TransactionRef = transactionRef
	payout.PayoutDate = &payoutDate

	s.notifyCompleted(payout)

	return payout, nil
}

// Cancel voids a pending payout and returns its conversions to the eligible
// pool.
func (s *payoutService) Cancel(ctx context.Context, payoutID uint) error {
	payout, err := s.payoutRepo.FindByID(ctx, payoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if payout.Status != domain.PayoutBatchStatusPending {
		return ErrNotPending
	}

	if err := s.payoutRepo.Cancel(ctx, payoutID); err != nil {
		logger.Error("failed to cancel payout", err)
		return fmt.Errorf("failed to cancel payout: %w", err)
	}

	logger.Info("payout cancelled", "payout_id", payoutID)

	return nil
}

func (s *payoutService) GetByID(ctx context.Context, id uint) (domain.Payout, error) {
	payout, err := s.payoutRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Payout{}, ErrNotFound
		}
		return domain.Payout{}, err
	}

	return payout, nil
}

func (s *payoutService) List(ctx context.Context, partnerID *uint) ([]domain.Payout, error) {
	return s.payoutRepo.FindAll(ctx, partnerID)
}

func (s *payoutService) GetConversions(ctx context.Context, payoutID uint) ([]domain.Conversion, error) {
	return s.payoutRepo.FindConversions(ctx, payoutID)
}

// notifyCompleted emails the partner about the settlement. Best effort: a mail
// failure never rolls back a completed payout.
func (s *payoutService) notifyCompleted(payout domain.Payout) {
	if s.notifier == nil {
		return
	}

	partner, err := s.partnerRepo.FindByID(context.Background(), payout.PartnerID)
	if err != nil || partner.Email == "" {
		return
	}

	subject := "Your affiliate payout has been processed"
	message := fmt.Sprintf(
		"Hi %s,\n\nYour payout of %.2f USD covering %d conversions (%s to %s) has been completed.\nTransaction reference: %s\n",
		partner.CompanyName,
		payout.TotalCommission,
		payout.TotalConversions,
		payout.PeriodStart.Format("2006-01-02"),
		payout.PeriodEnd.Format("2006-01-02"),
		payout.TransactionRef,
	)

	if err := s.notifier.SendEmail(partner.CompanyName, partner.Email, subject, message); err != nil {
		logger.Error("failed to send payout notification", err)
	}
}
