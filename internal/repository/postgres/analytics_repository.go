package postgres

import (
	"context"
	"time"

	"bioAffiliate/business/analytics"
	"bioAffiliate/domain"

	"gorm.io/gorm"
)

// AnalyticsRepository serves the aggregate queries behind the admin dashboard.
// Every click aggregate filters is_bot = false; bot traffic is only visible in
// raw click listings.
type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{
		DB: db,
	}
}

// countedStatuses are the conversion statuses that participate in revenue and
// conversion aggregates.
var countedStatuses = []string{domain.ConversionStatusPending, domain.ConversionStatusApproved}

func (r *AnalyticsRepository) CountClicks(ctx context.Context, partnerID *uint, from, to time.Time) (int64, error) {
	query := r.DB.WithContext(ctx).Model(&domain.Click{}).
		Where("is_bot=?", false).
		Where("created_at >= ? AND created_at < ?", from, to)
	if partnerID != nil {
		query = query.Where("partner_id=?", *partnerID)
	}

	var count int64
	err := query.Count(&count).Error

	return count, err
}

func (r *AnalyticsRepository) CountConversions(ctx context.Context, partnerID *uint, from, to time.Time) (int64, error) {
	query := r.DB.WithContext(ctx).Model(&domain.Conversion{}).
		Where("status IN ?", countedStatuses).
		Where("converted_at >= ? AND converted_at < ?", from, to)
	if partnerID != nil {
		query = query.Where("partner_id=?", *partnerID)
	}

	var count int64
	err := query.Count(&count).Error

	return count, err
}

func (r *AnalyticsRepository) SumRevenue(ctx context.Context, partnerID *uint, from, to time.Time) (float64, error) {
	return r.sumConversionColumn(ctx, "sale_amount", partnerID, from, to)
}

func (r *AnalyticsRepository) SumCommission(ctx context.Context, partnerID *uint, from, to time.Time) (float64, error) {
	return r.sumConversionColumn(ctx, "commission_amount", partnerID, from, to)
}

func (r *AnalyticsRepository) sumConversionColumn(ctx context.Context, column string, partnerID *uint, from, to time.Time) (float64, error) {
	query := r.DB.WithContext(ctx).Model(&domain.Conversion{}).
		Where("status IN ?", countedStatuses).
		Where("converted_at >= ? AND converted_at < ?", from, to)
	if partnerID != nil {
		query = query.Where("partner_id=?", *partnerID)
	}

	var total *float64
	err := query.Select("SUM(" + column + ")").Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}

	return *total, nil
}

type dayCount struct {
	Day   time.Time
	Count int64
}

type daySum struct {
	Day time.Time
	Sum float64
}

func (r *AnalyticsRepository) ClicksByDay(ctx context.Context, partnerID *uint, from, to time.Time) (map[string]int64, error) {
	query := r.DB.WithContext(ctx).Model(&domain.Click{}).
		Select("DATE_TRUNC('day', created_at) AS day, COUNT(*) AS count").
		Where("is_bot=?", false).
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("day")
	if partnerID != nil {
		query = query.Where("partner_id=?", *partnerID)
	}

	var rows []dayCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Day.Format("2006-01-02")] = row.Count
	}

	return out, nil
}

func (r *AnalyticsRepository) ConversionsByDay(ctx context.Context, partnerID *uint, from, to time.Time) (map[string]int64, error) {
	query := r.DB.WithContext(ctx).Model(&domain.Conversion{}).
		Select("DATE_TRUNC('day', converted_at) AS day, COUNT(*) AS count").
		Where("status IN ?", countedStatuses).
		Where("converted_at >= ? AND converted_at < ?", from, to).
		Group("day")
	if partnerID != nil {
		query = query.Where("partner_id=?", *partnerID)
	}

	var rows []dayCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Day.Format("2006-01-02")] = row.Count
	}

	return out, nil
}

func (r *AnalyticsRepository) RevenueByDay(ctx context.Context, partnerID *uint, from, to time.Time) (map[string]float64, error) {
	return r.sumByDay(ctx, "COALESCE(SUM(sale_amount), 0)", partnerID, from, to)
}

func (r *AnalyticsRepository) CommissionByDay(ctx context.Context, partnerID *uint, from, to time.Time) (map[string]float64, error) {
	return r.sumByDay(ctx, "COALESCE(SUM(commission_amount), 0)", partnerID, from, to)
}

func (r *AnalyticsRepository) sumByDay(ctx context.Context, sumExpr string, partnerID *uint, from, to time.Time) (map[string]float64, error) {
	query := r.DB.WithContext(ctx).Model(&domain.Conversion{}).
		Select("DATE_TRUNC('day', converted_at) AS day, "+sumExpr+" AS sum").
		Where("status IN ?", countedStatuses).
		Where("converted_at >= ? AND converted_at < ?", from, to).
		Group("day")
	if partnerID != nil {
		query = query.Where("partner_id=?", *partnerID)
	}

	var rows []daySum
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.Day.Format("2006-01-02")] = row.Sum
	}

	return out, nil
}

func (r *AnalyticsRepository) TopPartners(ctx context.Context, from, to time.Time, limit int) ([]analytics.TopPartner, error) {
	var rows []analytics.TopPartner
	err := r.DB.WithContext(ctx).Model(&domain.Conversion{}).
		Select("conversions.partner_id, partners.company_name, COUNT(*) AS conversions, COALESCE(SUM(conversions.commission_amount), 0) AS commission").
		Joins("JOIN partners ON partners.id = conversions.partner_id").
		Where("conversions.status IN ?", countedStatuses).
		Where("conversions.converted_at >= ? AND conversions.converted_at < ?", from, to).
		Group("conversions.partner_id, partners.company_name").
		Order("commission desc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *AnalyticsRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]analytics.TopProduct, error) {
	var rows []analytics.TopProduct
	err := r.DB.WithContext(ctx).Model(&domain.Conversion{}).
		Select("conversions.product_id, products.name, COUNT(*) AS conversions, COALESCE(SUM(conversions.commission_amount), 0) AS commission").
		Joins("JOIN products ON products.id = conversions.product_id").
		Where("conversions.product_id IS NOT NULL").
		Where("conversions.status IN ?", countedStatuses).
		Where("conversions.converted_at >= ? AND conversions.converted_at < ?", from, to).
		Group("conversions.product_id, products.name").
		Order("commission desc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}
