package domain

import "time"

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

// Click is an append-only event. Rows are never updated after creation, only
// referenced by a later conversion.
type Click struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LinkID     uint      `gorm:"column:link_id;not null;index" json:"link_id"`
	PartnerID  uint      `gorm:"column:partner_id;not null;index" json:"partner_id"`
	ProductID  *uint     `gorm:"column:product_id;index" json:"product_id,omitempty"`
	IP         string    `gorm:"column:ip;type:varchar(64)" json:"ip"`
	UserAgent  string    `gorm:"column:user_agent;type:varchar(1024)" json:"user_agent"`
	Referer    string    `gorm:"column:referer;type:varchar(1024)" json:"referer"`
	DeviceType string    `gorm:"column:device_type;type:varchar(20)" json:"device_type"`
	Browser    string    `gorm:"column:browser;type:varchar(50)" json:"browser"`
	Country    string    `gorm:"column:country;type:varchar(2)" json:"country"`
	IsBot      bool      `gorm:"column:is_bot;not null;default:false;index" json:"is_bot"`
	CreatedAt  time.Time `gorm:"column:created_at;index" json:"created_at"`

	Link Link `gorm:"foreignKey:LinkID" json:"link,omitempty"`
}

func (Click) TableName() string {
	return "clicks"
}
