package models

import "time"

const (
	EventNotificationNew    = "notification:new"
	EventNotificationRead   = "notification:read"
	EventNotificationDelete = "notification:delete"
)

type AdminNotification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
}

type NotificationEvent struct {
	Type         string             `json:"type"`
	Notification *AdminNotification `json:"notification,omitempty"`
	ID           string             `json:"id,omitempty"`
}
