package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bioAffiliate/domain"
	"bioAffiliate/pkg/logger"

	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("campaign not found")
	ErrInvalidPeriod = errors.New("campaign end must be after start")
)

type CampaignRepository interface {
	Create(ctx context.Context, campaign *domain.Campaign) error
	FindByID(ctx context.Context, id uint) (domain.Campaign, error)
	FindAll(ctx context.Context, partnerID *uint) ([]domain.Campaign, error)
	Update(ctx context.Context, campaign *domain.Campaign) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	// FindDueForActivation returns draft campaigns whose start has passed,
	// FindDueForCompletion returns active campaigns whose end has passed.
	FindDueForActivation(ctx context.Context, now time.Time) ([]domain.Campaign, error)
	FindDueForCompletion(ctx context.Context, now time.Time) ([]domain.Campaign, error)
}

type campaignService struct {
	campaignRepo CampaignRepository
}

func NewCampaignService(campaignRepo CampaignRepository) *campaignService {
	return &campaignService{
		campaignRepo: campaignRepo,
	}
}

func (s *campaignService) Create(ctx context.Context, campaign *domain.Campaign) (*domain.Campaign, error) {
	if !campaign.EndsAt.After(campaign.StartsAt) {
		return nil, ErrInvalidPeriod
	}
	if campaign.Status == "" {
		campaign.Status = domain.CampaignStatusDraft
	}

	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		logger.Error("failed to create campaign", err)
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	return campaign, nil
}

func (s *campaignService) GetAll(ctx context.Context, partnerID *uint) ([]domain.Campaign, error) {
	return s.campaignRepo.FindAll(ctx, partnerID)
}

func (s *campaignService) GetByID(ctx context.Context, id uint) (domain.Campaign, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Campaign{}, ErrNotFound
		}
		return domain.Campaign{}, err
	}

	return campaign, nil
}

func (s *campaignService) Update(ctx context.Context, campaign *domain.Campaign) (*domain.Campaign, error) {
	if _, err := s.GetByID(ctx, campaign.ID); err != nil {
		return nil, err
	}
	if !campaign.EndsAt.IsZero() && !campaign.EndsAt.After(campaign.StartsAt) {
		return nil, ErrInvalidPeriod
	}

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		logger.Error("failed to update campaign", err)
		return nil, fmt.Errorf("failed to update campaign: %w", err)
	}

	updated, err := s.campaignRepo.FindByID(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (s *campaignService) Cancel(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	return s.campaignRepo.UpdateStatus(ctx, id, domain.CampaignStatusCancelled)
}

// RunLifecycle moves campaigns along draft -> active -> completed based on
// their dates. Invoked on a timer from main; each run is idempotent.
func (s *campaignService) RunLifecycle(ctx context.Context) error {
	now := time.Now()

	due, err := s.campaignRepo.FindDueForActivation(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to find campaigns due for activation: %w", err)
	}
	for _, c := range due {
		if err := s.campaignRepo.UpdateStatus(ctx, c.ID, domain.CampaignStatusActive); err != nil {
			logger.Error("failed to activate campaign", "campaign_id", c.ID, "error", err)
			continue
		}
		logger.Info("campaign activated", "campaign_id", c.ID)
	}

	ended, err := s.campaignRepo.FindDueForCompletion(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to find campaigns due for completion: %w", err)
	}
	for _, c := range ended {
		if err := s.campaignRepo.UpdateStatus(ctx, c.ID, domain.CampaignStatusCompleted); err != nil {
			logger.Error("failed to complete campaign", "campaign_id", c.ID, "error", err)
			continue
		}
		logger.Info("campaign completed", "campaign_id", c.ID)
	}

	return nil
}
