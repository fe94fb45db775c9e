package partner

import (
	"context"
	"errors"
	"fmt"

	"bioAffiliate/domain"
	"bioAffiliate/pkg/logger"

	"gorm.io/gorm"
)

var (
	ErrNotFound              = errors.New("partner not found")
	ErrSlugTaken             = errors.New("partner slug already in use")
	ErrHasUnpaidConversions  = errors.New("partner has unpaid conversions and cannot be deleted")
	ErrInvalidStatus         = errors.New("invalid partner status")
	ErrInvalidCommissionType = errors.New("commission type must be percentage or flat")
)

type PartnerRepository interface {
	Create(ctx context.Context, partner *domain.Partner) error
	FindByID(ctx context.Context, id uint) (domain.Partner, error)
	FindBySlug(ctx context.Context, slug string) (domain.Partner, error)
	FindAll(ctx context.Context) ([]domain.Partner, error)
	Update(ctx context.Context, partner *domain.Partner) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
}

type ConversionRepository interface {
	CountUnpaidByPartner(ctx context.Context, partnerID uint) (int64, error)
}

type partnerService struct {
	partnerRepo    PartnerRepository
	conversionRepo ConversionRepository
}

func NewPartnerService(partnerRepo PartnerRepository, conversionRepo ConversionRepository) *partnerService {
	return &partnerService{
		partnerRepo:    partnerRepo,
		conversionRepo: conversionRepo,
	}
}

func (s *partnerService) Create(ctx context.Context, partner *domain.Partner) (*domain.Partner, error) {
	if partner.CommissionType == "" {
		partner.CommissionType = domain.CommissionTypePercentage
	}
	if partner.CommissionType != domain.CommissionTypePercentage && partner.CommissionType != domain.CommissionTypeFlat {
		return nil, ErrInvalidCommissionType
	}
	if partner.CookieWindowDays <= 0 {
		partner.CookieWindowDays = 30
	}
	if partner.Status == "" {
		partner.Status = domain.PartnerStatusPending
	}

	if err := s.partnerRepo.Create(ctx, partner); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		logger.Error("failed to create partner", err)
		return nil, fmt.Errorf("failed to create partner: %w", err)
	}

	logger.Info("partner created", "partner_id", partner.ID, "slug", partner.Slug)

	return partner, nil
}

func (s *partnerService) GetAll(ctx context.Context) ([]domain.Partner, error) {
	return s.partnerRepo.FindAll(ctx)
}

func (s *partnerService) GetByID(ctx context.Context, id uint) (domain.Partner, error) {
	partner, err := s.partnerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Partner{}, ErrNotFound
		}
		return domain.Partner{}, err
	}

	return partner, nil
}

func (s *partnerService) Update(ctx context.Context, partner *domain.Partner) (*domain.Partner, error) {
	existing, err := s.partnerRepo.FindByID(ctx, partner.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if partner.CommissionType != "" &&
		partner.CommissionType != domain.CommissionTypePercentage &&
		partner.CommissionType != domain.CommissionTypeFlat {
		return nil, ErrInvalidCommissionType
	}

	// Slug is part of issued short-link context and stays immutable.
	partner.Slug = existing.Slug

	if err := s.partnerRepo.Update(ctx, partner); err != nil {
		logger.Error("failed to update partner", err)
		return nil, fmt.Errorf("failed to update partner: %w", err)
	}

	updated, err := s.partnerRepo.FindByID(ctx, partner.ID)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (s *partnerService) UpdateStatus(ctx context.Context, id uint, status string) error {
	switch status {
	case domain.PartnerStatusPending, domain.PartnerStatusActive, domain.PartnerStatusPaused, domain.PartnerStatusTerminated:
	default:
		return ErrInvalidStatus
	}

	if err := s.partnerRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return nil
}

// Delete refuses to remove a partner with unpaid conversions; such partners
// are soft-terminated instead so the money trail survives.
func (s *partnerService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	unpaid, err := s.conversionRepo.CountUnpaidByPartner(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count unpaid conversions: %w", err)
	}
	if unpaid > 0 {
		if err := s.partnerRepo.UpdateStatus(ctx, id, domain.PartnerStatusTerminated); err != nil {
			return fmt.Errorf("failed to terminate partner: %w", err)
		}
		return ErrHasUnpaidConversions
	}

	if err := s.partnerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete partner: %w", err)
	}

	logger.Info("partner deleted", "partner_id", id)

	return nil
}
