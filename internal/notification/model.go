package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Type classifies a notification for display.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// LatestLimit is how many notifications the inbox returns.
const LatestLimit = 20

// Notification represents an in-app message to one user. Only IsRead changes after creation.
type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_notification_user_created" json:"user_id"`
	ComplaintID *uuid.UUID `gorm:"type:uuid" json:"complaint_id,omitempty"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	Type        Type       `gorm:"type:varchar(20);not null" json:"type"`
	IsRead      bool       `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time  `gorm:"not null;index:idx_notification_user_created" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
