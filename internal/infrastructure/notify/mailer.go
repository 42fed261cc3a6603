package notify

import (
	"context"
	"fmt"

	"barberq.backend/internal/config"
	"github.com/wneessen/go-mail"
)

var dialAndSend = func(ctx context.Context, c *mail.Client, msg *mail.Msg) error {
	return c.DialAndSendWithContext(ctx, msg)
}

// SMTPMailer sends plain-text notification copies over SMTP
type SMTPMailer struct {
	client   *mail.Client
	from     string
	fromName string
}

// NewSMTPMailer builds a mailer from config. Auth is only negotiated when a
// username is set.
func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not initialize smtp client: %w", err)
	}
	return &SMTPMailer{client: c, from: cfg.From, fromName: cfg.FromName}, nil
}

// Send delivers one message to a single recipient
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := dialAndSend(ctx, m.client, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
