package postgres

import (
	"context"

	"bioAffiliate/domain"

	"gorm.io/gorm"
)

type PostbackLogRepository struct {
	DB *gorm.DB
}

func NewPostbackLogRepository(db *gorm.DB) *PostbackLogRepository {
	return &PostbackLogRepository{
		DB: db,
	}
}

func (r *PostbackLogRepository) Create(ctx context.Context, log *domain.PostbackLog) error {
	return r.DB.WithContext(ctx).Create(log).Error
}

func (r *PostbackLogRepository) FindByPartner(ctx context.Context, partnerID uint, limit int) ([]domain.PostbackLog, error) {
	var logs []domain.PostbackLog
	err := r.DB.WithContext(ctx).
		Where("partner_id=?", partnerID).
		Order("created_at desc").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	return logs, nil
}
