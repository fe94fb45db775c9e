package domain

import "time"

const (
	LinkStatusActive  = "active"
	LinkStatusPaused  = "paused"
	LinkStatusExpired = "expired"
)

type Link struct {
	ID         uint  `gorm:"primaryKey;autoIncrement" json:"id"`
	PartnerID  uint  `gorm:"column:partner_id;not null;index" json:"partner_id"`
	ProductID  *uint `gorm:"column:product_id;index" json:"product_id,omitempty"`
	CampaignID *uint `gorm:"column:campaign_id;index" json:"campaign_id,omitempty"`
	// ShortCode is globally unique and immutable once issued.
	ShortCode      string     `gorm:"column:short_code;type:varchar(16);uniqueIndex;not null" json:"short_code"`
	DestinationURL string     `gorm:"column:destination_url;type:varchar(1024);not null" json:"destination_url"`
	Name           string     `gorm:"column:name;type:text" json:"name"`
	Status         string     `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	ExpiresAt      *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	// TotalConversions is a cached counter, bumped when a conversion is
	// attributed through this link.
	TotalConversions int64     `gorm:"column:total_conversions;not null;default:0" json:"total_conversions"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at" json:"updated_at"`

	Partner  Partner   `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	Product  *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Campaign *Campaign `gorm:"foreignKey:CampaignID" json:"campaign,omitempty"`
}

func (Link) TableName() string {
	return "links"
}

// Expired reports whether the link can no longer be resolved.
func (l Link) Expired(now time.Time) bool {
	if l.Status == LinkStatusExpired {
		return true
	}

	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}
