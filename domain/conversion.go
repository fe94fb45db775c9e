package domain

import "time"

const (
	ConversionTypeSale     = "sale"
	ConversionTypeLead     = "lead"
	ConversionTypeSignup   = "signup"
	ConversionTypeTrial    = "trial"
	ConversionTypeDownload = "download"

	ConversionStatusPending  = "pending"
	ConversionStatusApproved = "approved"
	ConversionStatusRejected = "rejected"
	ConversionStatusReversed = "reversed"

	PayoutStatusUnpaid     = "unpaid"
	PayoutStatusProcessing = "processing"
	PayoutStatusPaid       = "paid"
)

type Conversion struct {
	ID        uint  `gorm:"primaryKey;autoIncrement" json:"id"`
	PartnerID uint  `gorm:"column:partner_id;not null;index;uniqueIndex:idx_conversions_partner_order" json:"partner_id"`
	ProductID *uint `gorm:"column:product_id;index" json:"product_id,omitempty"`
	LinkID    *uint `gorm:"column:link_id;index" json:"link_id,omitempty"`
	ClickID   *uint `gorm:"column:click_id;index" json:"click_id,omitempty"`
	// OrderID with PartnerID forms the idempotency key that keeps retried
	// postbacks from double-counting.
	OrderID          string     `gorm:"column:order_id;type:varchar(128);not null;uniqueIndex:idx_conversions_partner_order" json:"order_id"`
	TransactionID    string     `gorm:"column:transaction_id;type:varchar(128)" json:"transaction_id"`
	Type             string     `gorm:"column:type;type:varchar(20);not null;default:'sale'" json:"type"`
	SaleAmount       *float64   `gorm:"column:sale_amount;type:numeric" json:"sale_amount,omitempty"`
	Currency         string     `gorm:"column:currency;type:varchar(3);not null;default:'USD'" json:"currency"`
	CommissionAmount float64    `gorm:"column:commission_amount;type:numeric;not null;default:0" json:"commission_amount"`
	Status           string     `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	PayoutStatus     string     `gorm:"column:payout_status;type:varchar(20);not null;default:'unpaid';index" json:"payout_status"`
	PayoutID         *uint      `gorm:"column:payout_id;index" json:"payout_id,omitempty"`
	ConvertedAt      time.Time  `gorm:"column:converted_at;not null;index" json:"converted_at"`
	ApprovedAt       *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	CreatedAt        time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at" json:"updated_at"`

	Partner Partner  `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (Conversion) TableName() string {
	return "conversions"
}
