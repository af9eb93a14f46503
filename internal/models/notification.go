package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is created by write paths only; read paths flip IsRead.
// UserID is the actor and may be nil for system-generated rows.
type Notification struct {
	BaseModel
	UserID           *string          `gorm:"type:uuid;index"`
	RecipientID      string           `gorm:"type:uuid;not null;index"`
	RecipientType    RecipientType    `gorm:"type:varchar(20);not null;default:'user'"`
	ResourceID       string           `gorm:"type:uuid;index"`
	ResourceType     string           `gorm:"type:varchar(32)"`
	NotificationType NotificationType `gorm:"type:varchar(20);not null"`
	Title            string           `gorm:"not null"`
	Message          string
	Data             datatypes.JSON `gorm:"type:jsonb"`
	IsRead           bool           `gorm:"default:false;index"`
	ReadAt           *time.Time
}
