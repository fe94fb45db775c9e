package analytics

import (
	"context"
	"fmt"
	"time"

	"bioAffiliate/pkg/logger"
)

// DailyPoint is one day of traffic and revenue. Click counts everywhere in
// this package exclude bot traffic.
type DailyPoint struct {
	Day         time.Time `json:"day"`
	Clicks      int64     `json:"clicks"`
	Conversions int64     `json:"conversions"`
	Revenue     float64   `json:"revenue"`
	Commission  float64   `json:"commission"`
}

type Summary struct {
	TotalClicks      int64   `json:"total_clicks"`
	TotalConversions int64   `json:"total_conversions"`
	TotalRevenue     float64 `json:"total_revenue"`
	TotalCommission  float64 `json:"total_commission"`
	// ConversionRate is conversions over non-bot clicks, percent.
	ConversionRate float64 `json:"conversion_rate"`
}

type TopPartner struct {
	PartnerID   uint    `json:"partner_id"`
	CompanyName string  `json:"company_name"`
	Conversions int64   `json:"conversions"`
	Commission  float64 `json:"commission"`
}

type TopProduct struct {
	ProductID   uint    `json:"product_id"`
	Name        string  `json:"name"`
	Conversions int64   `json:"conversions"`
	Commission  float64 `json:"commission"`
}

type AnalyticsRepository interface {
	// CountClicks counts non-bot clicks in the range, optionally per partner.
	CountClicks(ctx context.Context, partnerID *uint, from, to time.Time) (int64, error)
	CountConversions(ctx context.Context, partnerID *uint, from, to time.Time) (int64, error)
	SumRevenue(ctx context.Context, partnerID *uint, from, to time.Time) (float64, error)
	SumCommission(ctx context.Context, partnerID *uint, from, to time.Time) (float64, error)
	ClicksByDay(ctx context.Context, partnerID *uint, from, to time.Time) (map[string]int64, error)
	ConversionsByDay(ctx context.Context, partnerID *uint, from, to time.Time) (map[string]int64, error)
	RevenueByDay(ctx context.Context, partnerID *uint, from, to time.Time) (map[string]float64, error)
	CommissionByDay(ctx context.Context, partnerID *uint, from, to time.Time) (map[string]float64, error)
	TopPartners(ctx context.Context, from, to time.Time, limit int) ([]TopPartner, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error)
}

type analyticsService struct {
	repo AnalyticsRepository
}

func NewAnalyticsService(repo AnalyticsRepository) *analyticsService {
	return &analyticsService{repo: repo}
}

func (s *analyticsService) GetSummary(ctx context.Context, partnerID *uint, days int) (Summary, error) {
	from, to := rangeForDays(days)

	clicks, err := s.repo.CountClicks(ctx, partnerID, from, to)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to count clicks: %w", err)
	}
	conversions, err := s.repo.CountConversions(ctx, partnerID, from, to)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to count conversions: %w", err)
	}
	revenue, err := s.repo.SumRevenue(ctx, partnerID, from, to)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to sum revenue: %w", err)
	}
	commission, err := s.repo.SumCommission(ctx, partnerID, from, to)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to sum commission: %w", err)
	}

	summary := Summary{
		TotalClicks:      clicks,
		TotalConversions: conversions,
		TotalRevenue:     revenue,
		TotalCommission:  commission,
	}
	if clicks > 0 {
		summary.ConversionRate = float64(conversions) / float64(clicks) * 100
	}

	return summary, nil
}

func (s *analyticsService) GetDaily(ctx context.Context, partnerID *uint, days int) ([]DailyPoint, error) {
	from, to := rangeForDays(days)

	clicks, err := s.repo.ClicksByDay(ctx, partnerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load clicks by day: %w", err)
	}
	conversions, err := s.repo.ConversionsByDay(ctx, partnerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversions by day: %w", err)
	}
	revenue, err := s.repo.RevenueByDay(ctx, partnerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load revenue by day: %w", err)
	}
	commission, err := s.repo.CommissionByDay(ctx, partnerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load commission by day: %w", err)
	}

	points := make([]DailyPoint, 0, days)
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		points = append(points, DailyPoint{
			Day:         d,
			Clicks:      clicks[key],
			Conversions: conversions[key],
			Revenue:     revenue[key],
			Commission:  commission[key],
		})
	}

	return points, nil
}

func (s *analyticsService) GetTopPartners(ctx context.Context, days, limit int) ([]TopPartner, error) {
	from, to := rangeForDays(days)
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	top, err := s.repo.TopPartners(ctx, from, to, limit)
	if err != nil {
		logger.Error("failed to load top partners", err)
		return nil, err
	}

	return top, nil
}

func (s *analyticsService) GetTopProducts(ctx context.Context, days, limit int) ([]TopProduct, error) {
	from, to := rangeForDays(days)
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	top, err := s.repo.TopProducts(ctx, from, to, limit)
	if err != nil {
		logger.Error("failed to load top products", err)
		return nil, err
	}

	return top, nil
}

func rangeForDays(days int) (time.Time, time.Time) {
	if days <= 0 || days > 365 {
		days = 30
	}

	to := time.Now().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -days)

	return from, to
}
