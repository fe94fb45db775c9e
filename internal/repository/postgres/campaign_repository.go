package postgres

import (
	"context"
	"time"

	"bioAffiliate/domain"

	"gorm.io/gorm"
)

type CampaignRepository struct {
	DB *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{
		DB: db,
	}
}

func (r *CampaignRepository) Create(ctx context.Context, campaign *domain.Campaign) error {
	return r.DB.WithContext(ctx).Create(campaign).Error
}

func (r *CampaignRepository) FindByID(ctx context.Context, id uint) (domain.Campaign, error) {
	var campaign domain.Campaign
	err := r.DB.WithContext(ctx).Where("id=?", id).First(&campaign).Error
	if err != nil {
		return domain.Campaign{}, err
	}

	return campaign, nil
}

func (r *CampaignRepository) FindAll(ctx context.Context, partnerID *uint) ([]domain.Campaign, error) {
	query := r.DB.WithContext(ctx).Order("starts_at desc")
	if partnerID != nil {
		query = query.Where("partner_id=?", *partnerID)
	}

	var campaigns []domain.Campaign
	if err := query.Find(&campaigns).Error; err != nil {
		return nil, err
	}

	return campaigns, nil
}

func (r *CampaignRepository) Update(ctx context.Context, campaign *domain.Campaign) error {
	row := r.DB.WithContext(ctx).Where("id=?", campaign.ID).Updates(campaign)
	if err := row.Error; err != nil {
		return err
	}
	if row.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *CampaignRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	row := r.DB.WithContext(ctx).Model(&domain.Campaign{}).Where("id=?", id).Update("status", status)
	if err := row.Error; err != nil {
		return err
	}
	if row.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *CampaignRepository) FindDueForActivation(ctx context.Context, now time.Time) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	err := r.DB.WithContext(ctx).
		Where("status=?", domain.CampaignStatusDraft).
		Where("starts_at <= ?", now).
		Where("ends_at > ?", now).
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}

	return campaigns, nil
}

func (r *CampaignRepository) FindDueForCompletion(ctx context.Context, now time.Time) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	err := r.DB.WithContext(ctx).
		Where("status=?", domain.CampaignStatusActive).
		Where("ends_at <= ?", now).
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}

	return campaigns, nil
}
