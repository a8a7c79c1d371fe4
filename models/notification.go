package models

import "time"

// Notification type values.
const (
	NotificationTypeInfo    = "info"
	NotificationTypeWarning = "warning"
	NotificationTypeSuccess = "success"
)

type Notification struct {
	NotificationID uint      `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	RecipientID    uint      `gorm:"column:recipient_id" json:"recipient_id"`
	Message        string    `gorm:"column:message" json:"message"`
	Type           string    `gorm:"column:type" json:"type"` // info|warning|success
	IsRead         bool      `gorm:"column:is_read" json:"read"`
	Link           *string   `gorm:"column:link" json:"link,omitempty"`
	EmailSent      bool      `gorm:"column:email_sent" json:"email_sent"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`

	Recipient User `gorm:"foreignKey:RecipientID;references:UserID" json:"recipient,omitempty"`
}

func (Notification) TableName() string { return "notifications" }

// ValidNotificationType reports whether t is a known notification type.
func ValidNotificationType(t string) bool {
	switch t {
	case NotificationTypeInfo, NotificationTypeWarning, NotificationTypeSuccess:
		return true
	}
	return false
}
