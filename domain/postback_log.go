package domain

import (
	"time"

	"gorm.io/datatypes"
)

// PostbackLog is the audit trail of every inbound postback call, kept for
// debugging partner network integrations.
type PostbackLog struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PartnerID *uint  `gorm:"column:partner_id;index" json:"partner_id,omitempty"`
	RequestID string `gorm:"column:request_id;type:varchar(64);index" json:"request_id"`
	Method    string `gorm:"column:method;type:varchar(8)" json:"method"`
	Endpoint  string `gorm:"column:endpoint;type:varchar(255)" json:"endpoint"`
	// Payload is capped at 5000 bytes before storage.
	Payload        datatypes.JSON `gorm:"column:payload" json:"payload,omitempty"`
	ResponseStatus int            `gorm:"column:response_status" json:"response_status"`
	DurationMs     int64          `gorm:"column:duration_ms" json:"duration_ms"`
	RemoteIP       string         `gorm:"column:remote_ip;type:varchar(64)" json:"remote_ip"`
	CreatedAt      time.Time      `gorm:"column:created_at;index" json:"created_at"`
}

func (PostbackLog) TableName() string {
	return "postback_logs"
}
