// Package alerting pkg/alerting/mqtt.go
package alerting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/HughKantsime/printfarm/pkg/models"
)

const (
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second

	defaultTopicPrefix = "printfarm"
)

var (
	errMQTTIncomplete     = errors.New("mqtt config requires a broker")
	errMQTTConnectTimeout = errors.New("mqtt connect timed out")
	errMQTTPublishTimeout = errors.New("mqtt publish timed out")
)

// MQTTConfig points the republish channel at an external broker.
type MQTTConfig struct {
	Broker      string `json:"broker"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	TopicPrefix string `json:"topic_prefix,omitempty"`
	ClientID    string `json:"client_id,omitempty"`
}

// Validate checks the required fields.
func (c *MQTTConfig) Validate() error {
	if c.Broker == "" {
		return errMQTTIncomplete
	}

	return nil
}

// MQTTSender republishes alerts to <prefix>/alerts/<printer> so other
// systems on the farm bus can react. The payload carries the canonical
// alert fields as JSON.
type MQTTSender struct {
	cfg MQTTConfig

	mu     sync.Mutex
	client mqtt.Client
}

// NewMQTTSender builds the sender; the broker is dialed on first use.
func NewMQTTSender(cfg MQTTConfig) *MQTTSender {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = defaultTopicPrefix
	}

	if cfg.ClientID == "" {
		cfg.ClientID = fmt.Sprintf("printfarm-alerts-%d", time.Now().UnixNano())
	}

	return &MQTTSender{cfg: cfg}
}

func (*MQTTSender) Name() models.Channel {
	return models.ChannelMQTT
}

// Send publishes one alert. The broker connection is kept for the life of
// the process; paho reconnects underneath.
func (s *MQTTSender) Send(_ context.Context, alert *models.Alert, _ models.User) error {
	client, err := s.ensureConnected()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type":       alert.AlertType,
		"severity":   alert.Severity,
		"printer_id": alert.PrinterID,
		"title":      alert.Title,
		"message":    alert.Message,
		"created_at": alert.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal alert payload: %w", err)
	}

	token := client.Publish(topicFor(s.cfg.TopicPrefix, alert.PrinterID), 0, false, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return errMQTTPublishTimeout
	}

	return token.Error()
}

// Close drops the broker connection.
func (s *MQTTSender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		s.client.Disconnect(250)
		s.client = nil
	}
}

func (s *MQTTSender) ensureConnected() (mqtt.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil && s.client.IsConnected() {
		return s.client, nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.cfg.Broker)
	opts.SetClientID(s.cfg.ClientID)
	opts.SetConnectTimeout(mqttConnectTimeout)
	opts.SetAutoReconnect(true)

	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
		opts.SetPassword(s.cfg.Password)
	}

	client := mqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		client.Disconnect(0)

		return nil, fmt.Errorf("%w: %s", errMQTTConnectTimeout, s.cfg.Broker)
	}

	if err := token.Error(); err != nil {
		client.Disconnect(0)

		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	s.client = client

	return client, nil
}

func topicFor(prefix, printerID string) string {
	if printerID == "" {
		printerID = "farm"
	}

	return fmt.Sprintf("%s/alerts/%s", prefix, printerID)
}
