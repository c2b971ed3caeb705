package models

import "time"

// NotificationStatus tracks an outbox row through delivery
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// EmailNotification is an outbox row. The redemption flow only enqueues;
// the outbox worker owns delivery and retries. A failed delivery never
// changes the redemption that produced it.
type EmailNotification struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	ToAddress string `gorm:"not null" json:"to_address"`
	Subject   string `gorm:"not null" json:"subject"`
	HTMLBody  string `gorm:"type:text;not null" json:"-"`

	Status   NotificationStatus `gorm:"not null;default:'pending';index" json:"status"`
	Attempts int                `gorm:"not null;default:0" json:"attempts"`

	LastError         *string    `json:"last_error,omitempty"`
	ProviderMessageID *string    `json:"provider_message_id,omitempty"`
	SentAt            *time.Time `json:"sent_at,omitempty"`

	Timestamps
}
