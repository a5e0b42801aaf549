// Package mailer delivers outbound email over SMTP, or logs it when no SMTP
// server is configured.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"

	"crmapi/internal/config"
)

// Message is a single outbound email.
type Message struct {
	To      []string
	Subject string
	Body    string
	HTML    bool
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNoRecipients is returned when a message has no addresses.
var ErrNoRecipients = errors.New("message has no recipients")

// New returns an SMTP mailer when cfg.Host is set, otherwise a console mailer.
func New(cfg config.SMTPConfig, log logrus.FieldLogger) Mailer {
	if strings.TrimSpace(cfg.Host) == "" {
		log.WithField("component", "mailer").Warn("SMTP_HOST not set, emails will be logged instead of sent")
		return &LogMailer{log: log}
	}
	return &SMTPMailer{cfg: cfg, log: log}
}

// SMTPMailer sends through an SMTP relay using go-mail.
type SMTPMailer struct {
	cfg config.SMTPConfig
	log logrus.FieldLogger
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	out, err := buildMessage(m.cfg.From, msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.cfg.Host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	m.log.WithFields(logrus.Fields{
		"component":  "mailer",
		"event":      "mail_sent",
		"recipients": len(msg.To),
	}).Info("email sent")
	return nil
}

func (m *SMTPMailer) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithPort(m.cfg.Port)}
	if m.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return opts
}

func buildMessage(from string, msg Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	out.Subject(msg.Subject)
	ct := mail.TypeTextPlain
	if msg.HTML {
		ct = mail.TypeTextHTML
	}
	out.SetBodyString(ct, msg.Body)
	return out, nil
}

// LogMailer writes messages to the log. Used in development.
type LogMailer struct {
	log logrus.FieldLogger
}

// NewLogMailer returns a console mailer.
func NewLogMailer(log logrus.FieldLogger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	m.log.WithFields(logrus.Fields{
		"component": "mailer",
		"event":     "mail_logged",
		"to":        strings.Join(msg.To, ","),
		"subject":   msg.Subject,
		"body":      msg.Body,
	}).Info("email (console fallback)")
	return nil
}
