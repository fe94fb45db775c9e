package product

import (
	"context"
	"errors"
	"fmt"

	"bioAffiliate/domain"
	"bioAffiliate/pkg/logger"

	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("product not found")
	ErrSlugTaken            = errors.New("product slug already in use")
	ErrHasUnpaidConversions = errors.New("product has unpaid conversions and cannot be deleted")
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint) (domain.Product, error)
	FindAll(ctx context.Context, partnerID *uint) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uint) error
}

type ConversionRepository interface {
	CountUnpaidByProduct(ctx context.Context, productID uint) (int64, error)
}

type productService struct {
	productRepo    ProductRepository
	conversionRepo ConversionRepository
}

func NewProductService(productRepo ProductRepository, conversionRepo ConversionRepository) *productService {
	return &productService{
		productRepo:    productRepo,
		conversionRepo: conversionRepo,
	}
}

func (s *productService) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.Status == "" {
		product.Status = domain.ProductStatusActive
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		logger.Error("failed to create product", err)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *productService) GetAll(ctx context.Context, partnerID *uint) ([]domain.Product, error) {
	return s.productRepo.FindAll(ctx, partnerID)
}

func (s *productService) GetByID(ctx context.Context, id uint) (domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, ErrNotFound
		}
		return domain.Product{}, err
	}

	return product, nil
}

func (s *productService) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if _, err := s.GetByID(ctx, product.ID); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		logger.Error("failed to update product", err)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	updated, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (s *productService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	unpaid, err := s.conversionRepo.CountUnpaidByProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count unpaid conversions: %w", err)
	}
	if unpaid > 0 {
		return ErrHasUnpaidConversions
	}

	return s.productRepo.Delete(ctx, id)
}
