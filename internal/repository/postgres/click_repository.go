package postgres

import (
	"context"

	"bioAffiliate/domain"

	"gorm.io/gorm"
)

type ClickRepository struct {
	DB *gorm.DB
}

func NewClickRepository(db *gorm.DB) *ClickRepository {
	return &ClickRepository{
		DB: db,
	}
}

func (r *ClickRepository) Create(ctx context.Context, click *domain.Click) error {
	return r.DB.WithContext(ctx).Create(click).Error
}

// FindByID preloads the click's link with partner and campaign, which is what
// the attribution resolver needs to evaluate the window.
func (r *ClickRepository) FindByID(ctx context.Context, id uint) (domain.Click, error) {
	var click domain.Click
	err := r.DB.WithContext(ctx).
		Preload("Link").
		Preload("Link.Partner").
		Preload("Link.Campaign").
		Where("id=?", id).
		First(&click).Error
	if err != nil {
		return domain.Click{}, err
	}

	return click, nil
}

func (r *ClickRepository) FindByPartner(ctx context.Context, partnerID uint, limit int) ([]domain.Click, error) {
	var clicks []domain.Click
	err := r.DB.WithContext(ctx).
		Where("partner_id=?", partnerID).
		Order("created_at desc").
		Limit(limit).
		Find(&clicks).Error
	if err != nil {
		return nil, err
	}

	return clicks, nil
}

func (r *ClickRepository) FindByLink(ctx context.Context, linkID uint, limit int) ([]domain.Click, error) {
	var clicks []domain.Click
	err := r.DB.WithContext(ctx).
		Where("link_id=?", linkID).
		Order("created_at desc").
		Limit(limit).
		Find(&clicks).Error
	if err != nil {
		return nil, err
	}

	return clicks, nil
}
