package models

import "time"

// Notification types
const (
	NotificationInfo     = "INFO"
	NotificationAlert    = "ALERT"
	NotificationReminder = "REMINDER"
	NotificationWarning  = "WARNING"
	NotificationSuccess  = "SUCCESS"
)

type Notification struct {
	ID               int        `json:"id"`
	UserID           int        `json:"user_id"` // sender
	RecipientID      int        `json:"recipient_id"`
	Title            string     `json:"title"`
	Message          string     `json:"message"`
	ResourceType     string     `json:"resource_type"`
	ResourceID       string     `json:"resource_id"`
	NotificationType string     `json:"notification_type"`
	IsRead           bool       `json:"is_read"`
	ReadAt           *time.Time `json:"read_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// CreateNotification fans out one notification row per recipient.
type CreateNotification struct {
	Title            string `json:"title"`
	Message          string `json:"message"`
	ResourceType     string `json:"resource_type"`
	ResourceID       string `json:"resource_id"`
	NotificationType string `json:"notification_type"`
	RecipientIDs     []int  `json:"recipient_ids"`
	UserID           int    `json:"user_id"`
}
