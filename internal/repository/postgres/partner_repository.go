package postgres

import (
	"context"

	"bioAffiliate/domain"

	"gorm.io/gorm"
)

type PartnerRepository struct {
	DB *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) *PartnerRepository {
	return &PartnerRepository{
		DB: db,
	}
}

func (r *PartnerRepository) Create(ctx context.Context, partner *domain.Partner) error {
	return r.DB.WithContext(ctx).Create(partner).Error
}

func (r *PartnerRepository) FindByID(ctx context.Context, id uint) (domain.Partner, error) {
	var partner domain.Partner
	err := r.DB.WithContext(ctx).Where("id=?", id).First(&partner).Error
	if err != nil {
		return domain.Partner{}, err
	}

	return partner, nil
}

func (r *PartnerRepository) FindBySlug(ctx context.Context, slug string) (domain.Partner, error) {
	var partner domain.Partner
	err := r.DB.WithContext(ctx).Where("slug=?", slug).First(&partner).Error
	if err != nil {
		return domain.Partner{}, err
	}

	return partner, nil
}

func (r *PartnerRepository) FindAll(ctx context.Context) ([]domain.Partner, error) {
	var partners []domain.Partner
	err := r.DB.WithContext(ctx).Order("id").Find(&partners).Error
	if err != nil {
		return nil, err
	}

	return partners, nil
}

func (r *PartnerRepository) Update(ctx context.Context, partner *domain.Partner) error {
	row := r.DB.WithContext(ctx).Where("id=?", partner.ID).Updates(partner)
	if err := row.Error; err != nil {
		return err
	}
	if row.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *PartnerRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	row := r.DB.WithContext(ctx).Model(&domain.Partner{}).Where("id=?", id).Update("status", status)
	if err := row.Error; err != nil {
		return err
	}
	if row.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *PartnerRepository) Delete(ctx context.Context, id uint) error {
	row := r.DB.WithContext(ctx).Where("id=?", id).Delete(&domain.Partner{})
	if err := row.Error; err != nil {
		return err
	}
	if row.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
