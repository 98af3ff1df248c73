package models

import "time"

// NotificationLevel drives the toast style.
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
	NotificationWarning NotificationLevel = "warning"
)

// Notification is a user-visible toast queued for a session.
type Notification struct {
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"createdAt"`
}
