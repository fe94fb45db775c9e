package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	CampaignStatusDraft     = "draft"
	CampaignStatusActive    = "active"
	CampaignStatusCompleted = "completed"
	CampaignStatusCancelled = "cancelled"
)

type Campaign struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PartnerID uint   `gorm:"column:partner_id;not null;index" json:"partner_id"`
	Name      string `gorm:"column:name;type:text;not null" json:"name"`
	// BonusCommission overrides both the product override and the partner
	// default while the campaign is active.
	BonusCommission *float64       `gorm:"column:bonus_commission;type:numeric" json:"bonus_commission,omitempty"`
	DiscountCode    string         `gorm:"column:discount_code;type:varchar(64)" json:"discount_code"`
	UTMParams       datatypes.JSON `gorm:"column:utm_params" json:"utm_params,omitempty"`
	StartsAt        time.Time      `gorm:"column:starts_at;not null" json:"starts_at"`
	EndsAt          time.Time      `gorm:"column:ends_at;not null" json:"ends_at"`
	Status          string         `gorm:"column:status;type:varchar(20);not null;default:'draft';index" json:"status"`
	CreatedAt       time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at" json:"updated_at"`

	Partner Partner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// ActiveAt reports whether the campaign bonus applies at the given time.
func (c Campaign) ActiveAt(t time.Time) bool {
	return c.Status == CampaignStatusActive && !t.Before(c.StartsAt) && !t.After(c.EndsAt)
}
