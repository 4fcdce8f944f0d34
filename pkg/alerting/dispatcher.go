// Package alerting pkg/alerting/dispatcher.go
package alerting

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/HughKantsime/printfarm/pkg/models"
)

const (
	defaultDedupWindow = 5 * time.Minute
	deliveryTimeout    = 30 * time.Second

	subscriberName = "alerting"
)

var (
	errBadClock        = errors.New("bad quiet hours clock")
	errQuietHoursPair  = errors.New("quiet_start and quiet_end must be set together")
	errFailedToResolve = errors.New("failed to resolve alert recipients")
	errFailedToPersist = errors.New("failed to persist alerts")
)

// Config is the alerts block of the service configuration. Quiet hours
// are local time-of-day clocks; a start later than the end wraps past
// midnight. A channel block left nil leaves that sender unconfigured.
type Config struct {
	QuietStart  string          `json:"quiet_start,omitempty"`
	QuietEnd    string          `json:"quiet_end,omitempty"`
	DedupWindow models.Duration `json:"dedup_window,omitempty"`
	Webhook     *WebhookConfig  `json:"webhook,omitempty"`
	SMTP        *SMTPConfig     `json:"smtp,omitempty"`
	Push        *PushConfig     `json:"push,omitempty"`
	MQTT        *MQTTConfig     `json:"mqtt,omitempty"`
}

// Validate checks the quiet hours pair and any configured channels.
func (c *Config) Validate() error {
	if (c.QuietStart == "") != (c.QuietEnd == "") {
		return errQuietHoursPair
	}

	if c.QuietStart != "" {
		if _, err := parseClock(c.QuietStart); err != nil {
			return err
		}

		if _, err := parseClock(c.QuietEnd); err != nil {
			return err
		}
	}

	if c.SMTP != nil {
		if err := c.SMTP.Validate(); err != nil {
			return err
		}
	}

	if c.Push != nil {
		if err := c.Push.Validate(); err != nil {
			return err
		}
	}

	if c.MQTT != nil {
		if err := c.MQTT.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Notice is one alert to fan out, before per-user rows are cut.
type Notice struct {
	Type      string
	Severity  models.Severity
	PrinterID string
	Title     string
	Message   string
}

type dedupKey struct {
	alertType string
	printerID string
	title     string
}

// Dispatcher routes notices to in-app rows and external channels. One
// instance serves the whole process; Dispatch is safe for concurrent use.
type Dispatcher struct {
	store   Store
	senders map[models.Channel]Sender

	window     time.Duration
	quietStart int
	quietEnd   int

	mu     sync.Mutex
	recent map[dedupKey]time.Time

	wg  sync.WaitGroup
	now func() time.Time
}

// NewDispatcher builds a dispatcher from the config block and the
// configured channel senders.
func NewDispatcher(store Store, cfg Config, senders ...Sender) (*Dispatcher, error) {
	quietStart, quietEnd := -1, -1

	if cfg.QuietStart != "" || cfg.QuietEnd != "" {
		var err error

		if quietStart, err = parseClock(cfg.QuietStart); err != nil {
			return nil, err
		}

		if quietEnd, err = parseClock(cfg.QuietEnd); err != nil {
			return nil, err
		}
	}

	window := cfg.DedupWindow.Std()
	if window <= 0 {
		window = defaultDedupWindow
	}

	d := &Dispatcher{
		store:      store,
		senders:    make(map[models.Channel]Sender, len(senders)),
		window:     window,
		quietStart: quietStart,
		quietEnd:   quietEnd,
		recent:     make(map[dedupKey]time.Time),
		now:        time.Now,
	}

	for _, s := range senders {
		d.senders[s.Name()] = s
	}

	return d, nil
}

// Dispatch routes one notice: dedup, persist the in-app rows, then hand
// the external channels to their senders. The in-app write commits before
// any delivery is attempted, and deliveries never report back into the
// dispatch result.
func (d *Dispatcher) Dispatch(n Notice) error {
	if d.seenRecently(n) {
		log.Printf("Alert %q for printer %s suppressed, duplicate within %s",
			n.Title, n.PrinterID, d.window)
		return nil
	}

	targets, err := d.resolveTargets(n.Type)
	if err != nil {
		return fmt.Errorf("%w: %w", errFailedToResolve, err)
	}

	recipients := targets[models.ChannelInApp]
	if len(recipients) == 0 {
		return nil
	}

	now := d.now()
	rows := make([]*models.Alert, 0, len(recipients))
	byUser := make(map[string]*models.Alert, len(recipients))

	for _, u := range recipients {
		a := &models.Alert{
			UserID:    u.ID,
			AlertType: n.Type,
			Severity:  n.Severity,
			PrinterID: n.PrinterID,
			Title:     n.Title,
			Message:   n.Message,
			CreatedAt: now,
		}

		rows = append(rows, a)
		byUser[u.ID] = a
	}

	if err := d.store.CreateAlerts(rows); err != nil {
		return fmt.Errorf("%w: %w", errFailedToPersist, err)
	}

	if d.inQuietHours(now) {
		log.Printf("Quiet hours, alert %q held to in-app only", n.Title)
		return nil
	}

	for ch, users := range targets {
		if ch == models.ChannelInApp {
			continue
		}

		sender, ok := d.senders[ch]
		if !ok {
			log.Printf("No %s sender configured, skipping %d recipients of %q",
				ch, len(users), n.Title)
			continue
		}

		// The MQTT topic is shared, one publish covers every subscriber.
		if ch == models.ChannelMQTT && len(users) > 1 {
			users = users[:1]
		}

		d.wg.Add(1)

		go d.deliver(sender, users, byUser)
	}

	return nil
}

// Stop waits for in-flight deliveries to finish. Detach the bus first so
// no new dispatches start underneath it.
func (d *Dispatcher) Stop() {
	d.wg.Wait()
}

// resolveTargets groups recipients by channel. The in-app list is the
// union of every targeted user; with no preference rows anywhere it
// defaults to the whole user table and no external channels.
func (d *Dispatcher) resolveTargets(alertType string) (map[models.Channel][]models.User, error) {
	users, err := d.store.ListUsers()
	if err != nil {
		return nil, err
	}

	total, err := d.store.CountAlertPrefs()
	if err != nil {
		return nil, err
	}

	if total == 0 {
		return map[models.Channel][]models.User{models.ChannelInApp: users}, nil
	}

	prefs, err := d.store.ListAlertPrefs(alertType)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	targets := make(map[models.Channel][]models.User)
	inApp := make(map[string]bool, len(prefs))

	for _, p := range prefs {
		u, ok := byID[p.UserID]
		if !ok {
			continue
		}

		if !inApp[u.ID] {
			inApp[u.ID] = true

			targets[models.ChannelInApp] = append(targets[models.ChannelInApp], u)
		}

		if p.Channel != models.ChannelInApp {
			targets[p.Channel] = append(targets[p.Channel], u)
		}
	}

	return targets, nil
}

func (d *Dispatcher) deliver(sender Sender, users []models.User, rows map[string]*models.Alert) {
	defer d.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	for _, u := range users {
		alert, ok := rows[u.ID]
		if !ok {
			continue
		}

		if err := sender.Send(ctx, alert, u); err != nil {
			log.Printf("Alert delivery via %s to user %s failed: %v",
				sender.Name(), u.ID, err)
		}
	}
}

// seenRecently records the notice's dedup key and reports whether an
// identical one fired inside the window. Stale entries are pruned on the
// way through.
func (d *Dispatcher) seenRecently(n Notice) bool {
	key := dedupKey{alertType: n.Type, printerID: n.PrinterID, title: n.Title}
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	for k, stamp := range d.recent {
		if now.Sub(stamp) >= d.window {
			delete(d.recent, k)
		}
	}

	if stamp, ok := d.recent[key]; ok && now.Sub(stamp) < d.window {
		return true
	}

	d.recent[key] = now

	return false
}

// inQuietHours reports whether now falls inside the configured window. A
// window whose start is later than its end wraps past midnight.
func (d *Dispatcher) inQuietHours(now time.Time) bool {
	if d.quietStart < 0 || d.quietEnd < 0 {
		return false
	}

	minute := now.Hour()*60 + now.Minute()

	if d.quietStart <= d.quietEnd {
		return minute >= d.quietStart && minute < d.quietEnd
	}

	return minute >= d.quietStart || minute < d.quietEnd
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", errBadClock, s, err)
	}

	return t.Hour()*60 + t.Minute(), nil
}
