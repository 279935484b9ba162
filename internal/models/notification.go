package models

import (
	"time"
)

// NotificationType classifies in-app notifications
type NotificationType string

const (
	NotificationTypePayment         NotificationType = "PAYMENT"
	NotificationTypePaymentReminder NotificationType = "PAYMENT_REMINDER"
	NotificationTypePaymentLink     NotificationType = "PAYMENT_LINK"
	NotificationTypeMaintenance     NotificationType = "MAINTENANCE"
	NotificationTypeGeneral         NotificationType = "GENERAL"
)

// JSONB is stored as a jsonb column
type JSONB map[string]interface{}

type Notification struct {
	ID        int64            `json:"id" db:"id"`
	UserID    int64            `json:"user_id" db:"user_id"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Type      NotificationType `json:"type" db:"type"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	Link      *string          `json:"link,omitempty" db:"link"`
	Metadata  JSONB            `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
