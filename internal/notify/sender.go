package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"admissions/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	mail "github.com/wneessen/go-mail"
)

// Message is one outgoing HTML email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a single message
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SMTPSender delivers through an authenticated SMTP relay (Brevo by default)
type SMTPSender struct {
	client *mail.Client
	from   string
}

// NewSMTPSender builds a relay client. No connection is made until Send.
func NewSMTPSender(cfg config.MailCfg) (*SMTPSender, error) {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	if from == "" {
		return nil, errors.New("mail sender address is empty")
	}
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: from}, nil
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	msg, err := s.build(m)
	if err != nil {
		return backoff.Permanent(err)
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		// 5xx replies will not succeed on retry
		var se *mail.SendError
		if errors.As(err, &se) && !se.IsTemp() {
			return backoff.Permanent(err)
		}
		return err
	}
	return nil
}

func (s *SMTPSender) build(m Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)
	return msg, nil
}

// LogSender only logs messages. Used when no SMTP credentials are configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, m Message) error {
	log.Info().
		Str("to", m.To).
		Str("subject", m.Subject).
		Msg("mail disabled, message not sent")
	return nil
}
