package postgres

import (
	"context"

	"bioAffiliate/domain"

	"gorm.io/gorm"
)

type LinkRepository struct {
	DB *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{
		DB: db,
	}
}

func (r *LinkRepository) Create(ctx context.Context, link *domain.Link) error {
	return r.DB.WithContext(ctx).Create(link).Error
}

// FindByShortCode preloads the partner, product and campaign so the caller
// has full attribution context in one query path.
func (r *LinkRepository) FindByShortCode(ctx context.Context, code string) (domain.Link, error) {
	var link domain.Link
	err := r.DB.WithContext(ctx).
		Preload("Partner").
		Preload("Product").
		Preload("Campaign").
		Where("short_code=?", code).
		First(&link).Error
	if err != nil {
		return domain.Link{}, err
	}

	return link, nil
}

func (r *LinkRepository) FindByID(ctx context.Context, id uint) (domain.Link, error) {
	var link domain.Link
	err := r.DB.WithContext(ctx).
		Preload("Partner").
		Where("id=?", id).
		First(&link).Error
	if err != nil {
		return domain.Link{}, err
	}

	return link, nil
}

func (r *LinkRepository) FindByPartner(ctx context.Context, partnerID uint) ([]domain.Link, error) {
	var links []domain.Link
	err := r.DB.WithContext(ctx).
		Where("partner_id=?", partnerID).
		Order("id desc").
		Find(&links).Error
	if err != nil {
		return nil, err
	}

	return links, nil
}

func (r *LinkRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	row := r.DB.WithContext(ctx).Model(&domain.Link{}).Where("id=?", id).Update("status", status)
	if err := row.Error; err != nil {
		return err
	}
	if row.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *LinkRepository) Delete(ctx context.Context, id uint) error {
	row := r.DB.WithContext(ctx).Where("id=?", id).Delete(&domain.Link{})
	if err := row.Error; err != nil {
		return err
	}
	if row.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
