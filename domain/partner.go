package domain

import "time"

const (
	PartnerStatusPending    = "pending"
	PartnerStatusActive     = "active"
	PartnerStatusPaused     = "paused"
	PartnerStatusTerminated = "terminated"

	CommissionTypePercentage = "percentage"
	CommissionTypeFlat       = "flat"
)

type Partner struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyName string `gorm:"column:company_name;type:text;not null" json:"company_name"`
	Slug        string `gorm:"column:slug;type:varchar(128);uniqueIndex;not null" json:"slug"`
	Email       string `gorm:"column:email;type:varchar(255)" json:"email"`
	// APISecret signs inbound postbacks. Empty means the partner sends
	// unsigned postbacks, which is an explicit per-partner opt-out.
	APISecret        string    `gorm:"column:api_secret;type:varchar(128)" json:"-"`
	CommissionRate   float64   `gorm:"column:commission_rate;type:numeric;not null;default:0" json:"commission_rate"`
	CommissionType   string    `gorm:"column:commission_type;type:varchar(20);not null;default:'percentage'" json:"commission_type"`
	CookieWindowDays int       `gorm:"column:cookie_window_days;not null;default:30" json:"cookie_window_days"`
	Status           string    `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	PayoutThreshold  float64   `gorm:"column:payout_threshold;type:numeric;not null;default:0" json:"payout_threshold"`
	PayoutMethod     string    `gorm:"column:payout_method;type:varchar(50)" json:"payout_method"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Partner) TableName() string {
	return "partners"
}

// AttributionWindow is the span after a click during which a conversion may
// still be credited to it.
func (p Partner) AttributionWindow() time.Duration {
	days := p.CookieWindowDays
	if days <= 0 {
		days = 30
	}

	return time.Duration(days) * 24 * time.Hour
}
