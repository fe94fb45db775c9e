package domain

import "time"

const (
	PayoutBatchStatusPending   = "pending"
	PayoutBatchStatusCompleted = "completed"
	PayoutBatchStatusFailed    = "failed"
)

// Payout groups approved, unpaid conversions of one partner over a contiguous
// period. TotalCommission always equals the sum over its linked conversions.
type Payout struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	PartnerID        uint       `gorm:"column:partner_id;not null;index" json:"partner_id"`
	TotalCommission  float64    `gorm:"column:total_commission;type:numeric;not null;default:0" json:"total_commission"`
	TotalConversions int64      `gorm:"column:total_conversions;not null;default:0" json:"total_conversions"`
	PeriodStart      time.Time  `gorm:"column:period_start;not null" json:"period_start"`
	PeriodEnd        time.Time  `gorm:"column:period_end;not null" json:"period_end"`
	Status           string     `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	TransactionRef   string     `gorm:"column:transaction_ref;type:varchar(128)" json:"transaction_ref"`
	PayoutDate       *time.Time `gorm:"column:payout_date" json:"payout_date,omitempty"`
	Notes            string     `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt        time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at" json:"updated_at"`

	Partner Partner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
}

func (Payout) TableName() string {
	return "payouts"
}
