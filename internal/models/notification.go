package models

import "time"

// NotificationType classifies citizen notifications
type NotificationType string

const (
	NotificationTypePaymentReminder NotificationType = "payment_reminder"
)

// Notification is a message shown on the citizen dashboard
type Notification struct {
	ID        string           `json:"id,omitempty"`
	CitizenID string           `json:"citizenId"`
	Type      NotificationType `json:"type"`
	Period    string           `json:"period"`
	Message   string           `json:"message,omitempty"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}
