package postgres

import (
	"context"

	"bioAffiliate/domain"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.DB.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (domain.Product, error) {
	var product domain.Product
	err := r.DB.WithContext(ctx).Where("id=?", id).First(&product).Error
	if err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

func (r *ProductRepository) FindAll(ctx context.Context, partnerID *uint) ([]domain.Product, error) {
	query := r.DB.WithContext(ctx).Order("id")
	if partnerID != nil {
		query = query.Where("partner_id=?", *partnerID)
	}

	var products []domain.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}

	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	row := r.DB.WithContext(ctx).Where("id=?", product.ID).Updates(product)
	if err := row.Error; err != nil {
		return err
	}
	if row.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	row := r.DB.WithContext(ctx).Where("id=?", id).Delete(&domain.Product{})
	if err := row.Error; err != nil {
		return err
	}
	if row.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
