package domain

import "time"

const (
	ProductStatusActive     = "active"
	ProductStatusInactive   = "inactive"
	ProductStatusOutOfStock = "out_of_stock"
)

type Product struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	PartnerID uint    `gorm:"column:partner_id;not null;index" json:"partner_id"`
	Name      string  `gorm:"column:name;type:text;not null" json:"name"`
	Slug      string  `gorm:"column:slug;type:varchar(128);uniqueIndex;not null" json:"slug"`
	Category  string  `gorm:"column:category;type:varchar(100);index" json:"category"`
	Price     float64 `gorm:"column:price;type:numeric;not null;default:0" json:"price"`
	// URL is the canonical destination a link without a custom URL redirects to.
	URL string `gorm:"column:url;type:varchar(1024)" json:"url"`
	// CommissionOverride replaces the partner default rate when set.
	CommissionOverride *float64  `gorm:"column:commission_override;type:numeric" json:"commission_override,omitempty"`
	Status             string    `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt          time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at" json:"updated_at"`

	Partner Partner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
}

func (Product) TableName() string {
	return "products"
}
