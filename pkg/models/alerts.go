// Package models pkg/models/alerts.go
package models

import "time"

// Severity grades an alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Channel names a delivery path for alerts.
type Channel string

const (
	ChannelInApp   Channel = "inapp"
	ChannelWebhook Channel = "webhook"
	ChannelEmail   Channel = "email"
	ChannelPush    Channel = "push"
	ChannelMQTT    Channel = "mqtt"
)

// Alert is the persisted in-app record, one row per targeted user.
type Alert struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	AlertType    string    `json:"alert_type"`
	Severity     Severity  `json:"severity"`
	PrinterID    string    `json:"printer_id,omitempty"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Acknowledged bool      `json:"acknowledged"`
	CreatedAt    time.Time `json:"created_at"`
}

// AlertPref routes one alert type to one channel for one user. An empty
// preference table means every user gets in-app alerts and nothing else.
type AlertPref struct {
	UserID    string  `json:"user_id"`
	Channel   Channel `json:"channel"`
	AlertType string  `json:"alert_type"`
	Enabled   bool    `json:"enabled"`
}

// WebhookKind selects the payload shape for a user's webhook endpoint.
type WebhookKind string

const (
	WebhookGeneric WebhookKind = "generic"
	WebhookDiscord WebhookKind = "discord"
)

// User is an alert recipient.
type User struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email,omitempty"`
	WebhookURL  string      `json:"webhook_url,omitempty"`
	WebhookKind WebhookKind `json:"webhook_kind,omitempty"`
}

// PushSubscription is a stored web push target for one user.
type PushSubscription struct {
	UserID   string `json:"user_id"`
	Endpoint string `json:"endpoint"`
	KeyAuth  string `json:"key_auth"`
	KeyP256  string `json:"key_p256dh"`
}
