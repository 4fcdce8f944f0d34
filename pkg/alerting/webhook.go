// Package alerting pkg/alerting/webhook.go
package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/HughKantsime/printfarm/pkg/models"
)

const (
	webhookTimeout    = 10 * time.Second
	defaultRatePerMin = 30
	defaultRateBurst  = 5
)

const (
	discordColorRed    = 15158332 // Error
	discordColorYellow = 16776960 // Warning
	discordColorBlue   = 3447003  // Info
)

var (
	errNoWebhookURL  = errors.New("user has no webhook url")
	errWebhookStatus = errors.New("webhook returned non-2xx status")
)

// WebhookConfig tunes the shared outbound limiter. Endpoint URLs live on
// the user rows, not here.
type WebhookConfig struct {
	RatePerMinute int `json:"rate_per_minute,omitempty"`
	Burst         int `json:"burst,omitempty"`
}

// WebhookSender posts alerts to each user's stored endpoint. The payload
// shape follows the user's webhook kind: discord embeds or the plain
// alert row as JSON.
type WebhookSender struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewWebhookSender builds the sender; a nil config takes the defaults.
func NewWebhookSender(cfg *WebhookConfig) *WebhookSender {
	perMinute := defaultRatePerMin
	burst := defaultRateBurst

	if cfg != nil && cfg.RatePerMinute > 0 {
		perMinute = cfg.RatePerMinute
	}

	if cfg != nil && cfg.Burst > 0 {
		burst = cfg.Burst
	}

	return &WebhookSender{
		client:  &http.Client{Timeout: webhookTimeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
	}
}

func (*WebhookSender) Name() models.Channel {
	return models.ChannelWebhook
}

// Send posts one alert. The limiter is shared across recipients so a
// flapping fleet cannot hammer third-party endpoints.
func (s *WebhookSender) Send(ctx context.Context, alert *models.Alert, user models.User) error {
	if user.WebhookURL == "" {
		return fmt.Errorf("%w: user %s", errNoWebhookURL, user.ID)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := buildWebhookPayload(alert, user.WebhookKind)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return s.post(ctx, user.WebhookURL, payload)
}

func (s *WebhookSender) post(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return fmt.Errorf("%w: status=%d body=%s", errWebhookStatus, resp.StatusCode, body)
	}

	return nil
}

func buildWebhookPayload(alert *models.Alert, kind models.WebhookKind) ([]byte, error) {
	if kind == models.WebhookDiscord {
		return json.Marshal(discordPayload(alert))
	}

	return json.Marshal(alert)
}

type discordMessage struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Color       int                 `json:"color"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

func discordPayload(alert *models.Alert) discordMessage {
	embed := discordEmbed{
		Title:       alert.Title,
		Description: alert.Message,
		Color:       discordColor(alert.Severity),
		Timestamp:   alert.CreatedAt.UTC().Format(time.RFC3339),
	}

	if alert.PrinterID != "" {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:   "Printer",
			Value:  alert.PrinterID,
			Inline: true,
		})
	}

	return discordMessage{Embeds: []discordEmbed{embed}}
}

func discordColor(severity models.Severity) int {
	switch severity {
	case models.SeverityError, models.SeverityCritical:
		return discordColorRed
	case models.SeverityWarning:
		return discordColorYellow
	default:
		return discordColorBlue
	}
}
