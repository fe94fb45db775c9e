package postgres

import (
	"context"
	"time"

	"bioAffiliate/business/attribution"
	"bioAffiliate/domain"

	"gorm.io/gorm"
)

type ConversionRepository struct {
	DB *gorm.DB
}

func NewConversionRepository(db *gorm.DB) *ConversionRepository {
	return &ConversionRepository{
		DB: db,
	}
}

// Create inserts the conversion and bumps the link conversion counter in the
// same transaction. The unique index on (partner_id, order_id) surfaces as
// gorm.ErrDuplicatedKey for retried postbacks.
func (r *ConversionRepository) Create(ctx context.Context, conversion *domain.Conversion) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conversion).Error; err != nil {
			return err
		}

		if conversion.LinkID != nil {
			err := tx.Model(&domain.Link{}).
				Where("id=?", *conversion.LinkID).
				Update("total_conversions", gorm.Expr("total_conversions + 1")).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *ConversionRepository) FindByPartnerOrder(ctx context.Context, partnerID uint, orderID string) (domain.Conversion, error) {
	var conversion domain.Conversion
	err := r.DB.WithContext(ctx).
		Where("partner_id=?", partnerID).
		Where("order_id=?", orderID).
		First(&conversion).Error
	if err != nil {
		return domain.Conversion{}, err
	}

	return conversion, nil
}

func (r *ConversionRepository) FindByID(ctx context.Context, id uint) (domain.Conversion, error) {
	var conversion domain.Conversion
	err := r.DB.WithContext(ctx).Where("id=?", id).First(&conversion).Error
	if err != nil {
		return domain.Conversion{}, err
	}

	return conversion, nil
}

func (r *ConversionRepository) UpdateStatus(ctx context.Context, id uint, status string, approvedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if approvedAt != nil {
		updates["approved_at"] = *approvedAt
	}

	row := r.DB.WithContext(ctx).Model(&domain.Conversion{}).Where("id=?", id).Updates(updates)
	if err := row.Error; err != nil {
		return err
	}
	if row.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *ConversionRepository) Find(ctx context.Context, filter attribution.ConversionFilter) ([]domain.Conversion, error) {
	query := r.DB.WithContext(ctx).Order("converted_at desc").Limit(filter.Limit)
	if filter.PartnerID != nil {
		query = query.Where("partner_id=?", *filter.PartnerID)
	}
	if filter.Status != "" {
		query = query.Where("status=?", filter.Status)
	}
	if filter.PayoutStatus != "" {
		query = query.Where("payout_status=?", filter.PayoutStatus)
	}

	var conversions []domain.Conversion
	if err := query.Find(&conversions).Error; err != nil {
		return nil, err
	}

	return conversions, nil
}

// FindEligible selects approved, unpaid conversions for a payout batch.
func (r *ConversionRepository) FindEligible(ctx context.Context, partnerID uint, ids []uint) ([]domain.Conversion, error) {
	query := r.DB.WithContext(ctx).
		Where("partner_id=?", partnerID).
		Where("status=?", domain.ConversionStatusApproved).
		Where("payout_status=?", domain.PayoutStatusUnpaid)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}

	var conversions []domain.Conversion
	if err := query.Order("converted_at").Find(&conversions).Error; err != nil {
		return nil, err
	}

	return conversions, nil
}

func (r *ConversionRepository) CountUnpaidByPartner(ctx context.Context, partnerID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&domain.Conversion{}).
		Where("partner_id=?", partnerID).
		Where("payout_status <> ?", domain.PayoutStatusPaid).
		Where("status NOT IN ?", []string{domain.ConversionStatusRejected, domain.ConversionStatusReversed}).
		Count(&count).Error

	return count, err
}

func (r *ConversionRepository) CountUnpaidByProduct(ctx context.Context, productID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&domain.Conversion{}).
		Where("product_id=?", productID).
		Where("payout_status <> ?", domain.PayoutStatusPaid).
		Where("status NOT IN ?", []string{domain.ConversionStatusRejected, domain.ConversionStatusReversed}).
		Count(&count).Error

	return count, err
}

func (r *ConversionRepository) CountUnpaidByLink(ctx context.Context, linkID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&domain.Conversion{}).
		Where("link_id=?", linkID).
		Where("payout_status <> ?", domain.PayoutStatusPaid).
		Where("status NOT IN ?", []string{domain.ConversionStatusRejected, domain.ConversionStatusReversed}).
		Count(&count).Error

	return count, err
}
