package postgres

import (
	"context"
	"time"

	"bioAffiliate/domain"

	"gorm.io/gorm"
)

type PayoutRepository struct {
	DB *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{
		DB: db,
	}
}

// CreateWithConversions creates the payout row and moves every selected
// conversion to processing in one transaction. Partial application would be a
// correctness bug, so any failure rolls the whole batch back.
func (r *PayoutRepository) CreateWithConversions(ctx context.Context, payout *domain.Payout, conversionIDs []uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payout).Error; err != nil {
			return err
		}

		row := tx.Model(&domain.Conversion{}).
			Where("id IN ?", conversionIDs).
			Where("payout_status=?", domain.PayoutStatusUnpaid).
			Updates(map[string]any{
				"payout_id":     payout.ID,
				"payout_status": domain.PayoutStatusProcessing,
			})
		if err := row.Error; err != nil {
			return err
		}
		// A concurrent batch may have claimed one of the rows between
		// selection and update; roll back rather than pay out a short batch.
		if row.RowsAffected != int64(len(conversionIDs)) {
			return gorm.ErrInvalidTransaction
		}

		return nil
	})
}

func (r *PayoutRepository) Complete(ctx context.Context, payoutID uint, transactionRef string, payoutDate time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := tx.Model(&domain.Payout{}).
			Where("id=?", payoutID).
			Where("status=?", domain.PayoutBatchStatusPending).
			Updates(map[string]any{
				"status":          domain.PayoutBatchStatusCompleted,
				"transaction_ref": transactionRef,
				"payout_date":     payoutDate,
			})
		if err := row.Error; err != nil {
			return err
		}
		if row.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&domain.Conversion{}).
			Where("payout_id=?", payoutID).
			Update("payout_status", domain.PayoutStatusPaid).Error
	})
}

func (r *PayoutRepository) Cancel(ctx context.Context, payoutID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := tx.Model(&domain.Payout{}).
			Where("id=?", payoutID).
			Where("status=?", domain.PayoutBatchStatusPending).
			Update("status", domain.PayoutBatchStatusFailed)
		if err := row.Error; err != nil {
			return err
		}
		if row.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&domain.Conversion{}).
			Where("payout_id=?", payoutID).
			Updates(map[string]any{
				"payout_id":     nil,
				"payout_status": domain.PayoutStatusUnpaid,
			}).Error
	})
}

func (r *PayoutRepository) FindByID(ctx context.Context, id uint) (domain.Payout, error) {
	var payout domain.Payout
	err := r.DB.WithContext(ctx).Where("id=?", id).First(&payout).Error
	if err != nil {
		return domain.Payout{}, err
	}

	return payout, nil
}

func (r *PayoutRepository) FindAll(ctx context.Context, partnerID *uint) ([]domain.Payout, error) {
	query := r.DB.WithContext(ctx).Order("created_at desc")
	if partnerID != nil {
		query = query.Where("partner_id=?", *partnerID)
	}

	var payouts []domain.Payout
	if err := query.Find(&payouts).Error; err != nil {
		return nil, err
	}

	return payouts, nil
}

func (r *PayoutRepository) FindConversions(ctx context.Context, payoutID uint) ([]domain.Conversion, error) {
	var conversions []domain.Conversion
	err := r.DB.WithContext(ctx).
		Where("payout_id=?", payoutID).
		Order("converted_at").
		Find(&conversions).Error
	if err != nil {
		return nil, err
	}

	return conversions, nil
}
