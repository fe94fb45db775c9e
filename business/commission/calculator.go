package commission

import (
	"math"
	"time"

	"bioAffiliate/domain"
)

// Calculate computes the commission for a sale amount.
//
// The effective rate is resolved in priority order: an active campaign's bonus
// commission, then the product's commission override, then the partner default.
// The commission type always comes from the partner.
func Calculate(partner domain.Partner, product *domain.Product, campaign *domain.Campaign, saleAmount *float64, at time.Time) float64 {
	rate := partner.CommissionRate

	if product != nil && product.CommissionOverride != nil {
		rate = *product.CommissionOverride
	}

	if campaign != nil && campaign.BonusCommission != nil && campaign.ActiveAt(at) {
		rate = *campaign.BonusCommission
	}

	switch partner.CommissionType {
	case domain.CommissionTypeFlat:
		// Flat bounty per conversion, independent of sale amount. This is the
		// expected configuration for lead/signup/trial/download conversions.
		return round2(rate)
	default:
		if saleAmount == nil {
			return 0
		}
		return round2(*saleAmount * rate / 100)
	}
}

// round2 rounds to currency-minor-unit precision (2 decimals for USD-like
// currencies).
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
