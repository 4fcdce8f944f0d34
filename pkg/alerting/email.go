// Package alerting pkg/alerting/email.go
package alerting

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/HughKantsime/printfarm/pkg/models"
)

const defaultSMTPPort = 587

var (
	errNoEmailAddress = errors.New("user has no email address")
	errSMTPIncomplete = errors.New("smtp config requires host and from")
)

// SMTPConfig holds the submission account for the email channel.
type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	From     string `json:"from"`
}

// Validate checks the required fields.
func (c *SMTPConfig) Validate() error {
	if c.Host == "" || c.From == "" {
		return errSMTPIncomplete
	}

	return nil
}

// EmailSender delivers alerts over SMTP with plain auth.
type EmailSender struct {
	cfg SMTPConfig

	// sendMail is smtp.SendMail unless a test swaps it.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailSender builds the sender, defaulting the submission port.
func NewEmailSender(cfg SMTPConfig) *EmailSender {
	if cfg.Port == 0 {
		cfg.Port = defaultSMTPPort
	}

	return &EmailSender{cfg: cfg, sendMail: smtp.SendMail}
}

func (*EmailSender) Name() models.Channel {
	return models.ChannelEmail
}

// Send submits one message. net/smtp has no context support, so the
// deadline only gates entry; an in-flight submission runs to the server
// timeout.
func (s *EmailSender) Send(ctx context.Context, alert *models.Alert, user models.User) error {
	if user.Email == "" {
		return fmt.Errorf("%w: user %s", errNoEmailAddress, user.ID)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	msg := buildEmailMessage(s.cfg.From, user.Email, alert)

	if err := s.sendMail(addr, auth, s.cfg.From, []string{user.Email}, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}

func buildEmailMessage(from, to string, alert *models.Alert) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: [%s] %s\r\n", strings.ToUpper(string(alert.Severity)), alert.Title)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(alert.Message)
	b.WriteString("\r\n")

	if alert.PrinterID != "" {
		fmt.Fprintf(&b, "\r\nPrinter: %s\r\n", alert.PrinterID)
	}

	return []byte(b.String())
}
