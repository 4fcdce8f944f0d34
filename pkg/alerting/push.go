// Package alerting pkg/alerting/push.go
package alerting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/HughKantsime/printfarm/pkg/models"
)

const pushTTLSeconds = 60

var errPushIncomplete = errors.New("push config requires vapid keys and subscriber")

// PushConfig holds the VAPID signing material for web push.
type PushConfig struct {
	Subscriber      string `json:"subscriber"`
	VAPIDPublicKey  string `json:"vapid_public_key"`
	VAPIDPrivateKey string `json:"vapid_private_key"`
}

// Validate checks the required fields.
func (c *PushConfig) Validate() error {
	if c.Subscriber == "" || c.VAPIDPublicKey == "" || c.VAPIDPrivateKey == "" {
		return errPushIncomplete
	}

	return nil
}

// PushSender fans one alert out to every stored web push subscription of
// the recipient. Subscriptions the push service reports gone are pruned.
type PushSender struct {
	store Store
	cfg   PushConfig
}

// NewPushSender builds the sender.
func NewPushSender(store Store, cfg PushConfig) *PushSender {
	return &PushSender{store: store, cfg: cfg}
}

func (*PushSender) Name() models.Channel {
	return models.ChannelPush
}

// Send pushes to each of the user's subscriptions, collecting per-target
// failures so one dead endpoint never hides the others.
func (s *PushSender) Send(ctx context.Context, alert *models.Alert, user models.User) error {
	subs, err := s.store.ListPushSubscriptions(user.ID)
	if err != nil {
		return fmt.Errorf("failed to list push subscriptions: %w", err)
	}

	if len(subs) == 0 {
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"title":      alert.Title,
		"message":    alert.Message,
		"severity":   alert.Severity,
		"printer_id": alert.PrinterID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	var errs []error

	for _, sub := range subs {
		if err := s.push(ctx, payload, sub); err != nil {
			errs = append(errs, fmt.Errorf("endpoint %s: %w", sub.Endpoint, err))
		}
	}

	return errors.Join(errs...)
}

func (s *PushSender) push(ctx context.Context, payload []byte, sub models.PushSubscription) error {
	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.KeyAuth,
			P256dh: sub.KeyP256,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, target, &webpush.Options{
		Subscriber:      s.cfg.Subscriber,
		VAPIDPublicKey:  s.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: s.cfg.VAPIDPrivateKey,
		TTL:             pushTTLSeconds,
	})
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close push response body: %v", err)
		}
	}()

	// 404 and 410 mean the browser dropped the subscription.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		if err := s.store.DeletePushSubscription(sub.Endpoint); err != nil {
			log.Printf("failed to prune gone push subscription: %v", err)
		}

		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}

	return nil
}
