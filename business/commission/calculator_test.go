package commission

import (
	"testing"
	"time"

	"bioAffiliate/domain"
)

func fp(v float64) *float64 { return &v }

func TestCalculate_PercentageRate(t *testing.T) {
	partner := domain.Partner{CommissionRate: 10, CommissionType: domain.CommissionTypePercentage}

	got := Calculate(partner, nil, nil, fp(200), time.Now())
	if got != 20.00 {
		t.Errorf("expected commission 20.00, got %v", got)
	}
}

func TestCalculate_PercentageRounding(t *testing.T) {
	partner := domain.Partner{CommissionRate: 7.5, CommissionType: domain.CommissionTypePercentage}

	got := Calculate(partner, nil, nil, fp(33.33), time.Now())
	if got != 2.50 {
		t.Errorf("expected commission 2.50, got %v", got)
	}
}

func TestCalculate_FlatRate(t *testing.T) {
	partner := domain.Partner{CommissionRate: 5, CommissionType: domain.CommissionTypeFlat}

	for _, amount := range []*float64{fp(200), fp(0.5), nil} {
		got := Calculate(partner, nil, nil, amount, time.Now())
		if got != 5.00 {
			t.Errorf("flat commission with amount %v: expected 5.00, got %v", amount, got)
		}
	}
}

func TestCalculate_PercentageNilAmountIsZero(t *testing.T) {
	partner := domain.Partner{CommissionRate: 10, CommissionType: domain.CommissionTypePercentage}

	got := Calculate(partner, nil, nil, nil, time.Now())
	if got != 0 {
		t.Errorf("expected commission 0 for nil sale amount, got %v", got)
	}
}

func TestCalculate_ProductOverrideBeatsPartnerDefault(t *testing.T) {
	partner := domain.Partner{CommissionRate: 10, CommissionType: domain.CommissionTypePercentage}
	product := domain.Product{CommissionOverride: fp(20)}

	got := Calculate(partner, &product, nil, fp(100), time.Now())
	if got != 20.00 {
		t.Errorf("expected override commission 20.00, got %v", got)
	}
}

func TestCalculate_CampaignBonusBeatsEverything(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	partner := domain.Partner{CommissionRate: 10, CommissionType: domain.CommissionTypePercentage}
	product := domain.Product{CommissionOverride: fp(20)}
	campaign := domain.Campaign{
		BonusCommission: fp(30),
		Status:          domain.CampaignStatusActive,
		StartsAt:        now.Add(-24 * time.Hour),
		EndsAt:          now.Add(24 * time.Hour),
	}

	got := Calculate(partner, &product, &campaign, fp(100), now)
	if got != 30.00 {
		t.Errorf("expected campaign commission 30.00, got %v", got)
	}
}

func TestCalculate_InactiveCampaignBonusIgnored(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	partner := domain.Partner{CommissionRate: 10, CommissionType: domain.CommissionTypePercentage}

	cases := []domain.Campaign{
		// ended before the conversion
		{BonusCommission: fp(30), Status: domain.CampaignStatusActive, StartsAt: now.Add(-48 * time.Hour), EndsAt: now.Add(-24 * time.Hour)},
		// not started yet
		{BonusCommission: fp(30), Status: domain.CampaignStatusActive, StartsAt: now.Add(24 * time.Hour), EndsAt: now.Add(48 * time.Hour)},
		// in-date but still a draft
		{BonusCommission: fp(30), Status: domain.CampaignStatusDraft, StartsAt: now.Add(-24 * time.Hour), EndsAt: now.Add(24 * time.Hour)},
	}

	for i, campaign := range cases {
		got := Calculate(partner, nil, &campaign, fp(100), now)
		if got != 10.00 {
			t.Errorf("case %d: expected partner default commission 10.00, got %v", i, got)
		}
	}
}
