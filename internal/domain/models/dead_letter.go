package models

import (
	"time"
)

// DeadLetter описывает неудачную доставку в один вебхук.
type DeadLetter struct {
	ID               string    `json:"id"`
	NotificationID   string    `json:"notification_id"`
	NotificationType string    `json:"notification_type"`
	WebhookURL       string    `json:"webhook_url"`
	Payload          *Payload  `json:"payload"`
	Error            string    `json:"error"`
	FailedAt         time.Time `json:"failed_at"`
}
