// Package mail wraps outbound SMTP delivery behind a small Sender contract.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/jelius-sama/SelfAuth/internal/config"
)

// Sender delivers a message to a single recipient. Implementations report
// failure with an error; the caller decides what to roll back.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends plain-text mail through a configured SMTP relay.
type SMTPSender struct {
	cfg config.SMTP
}

// NewSMTPSender builds a sender from the process configuration.
func NewSMTPSender(cfg config.SMTP) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail: SMTP_HOST is not configured")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("mail: SMTP_FROM is not configured")
	}
	return &SMTPSender{cfg: cfg}, nil
}

// Send dials the relay and delivers the message, blocking until the relay
// accepts or rejects it.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("mail: set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mail: set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	opts := []gomail.Option{gomail.WithPort(s.cfg.Port)}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail: client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}
