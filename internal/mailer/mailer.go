// Package mailer submits reminder emails over authenticated SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/reminder"
)

const (
	DefaultHost = "smtp.gmail.com"
	DefaultPort = 587
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// From defaults to Username.
	From string
}

// Mailer sends one message per connection and never retries.
type Mailer struct {
	from   string
	logger *zap.Logger
	send   func(ctx context.Context, msgs ...*mail.Msg) error
}

func New(cfg Config, logger *zap.Logger) (*Mailer, error) {
	if strings.TrimSpace(cfg.Username) == "" || cfg.Password == "" {
		return nil, errors.New("smtp credentials are required")
	}

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = DefaultHost
	}

	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = strings.TrimSpace(cfg.Username)
	}

	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(strings.TrimSpace(cfg.Username)),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Mailer{
		from:   from,
		logger: logger.With(zap.String("smtp_host", host), zap.Int("smtp_port", port)),
		send:   client.DialAndSendWithContext,
	}, nil
}

// Send delivers msg as a plain-text email.
func (m *Mailer) Send(ctx context.Context, msg reminder.Message) error {
	email, err := m.build(msg)
	if err != nil {
		return err
	}

	m.logger.Debug("submitting email", zap.String("to", msg.To))

	if err := m.send(ctx, email); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}

	return nil
}

func (m *Mailer) build(msg reminder.Message) (*mail.Msg, error) {
	email := mail.NewMsg()

	if err := email.From(m.from); err != nil {
		return nil, fmt.Errorf("set from address: %w", err)
	}
	if err := email.To(msg.To); err != nil {
		return nil, fmt.Errorf("set to address %q: %w", msg.To, err)
	}

	email.Subject(msg.Subject)
	email.SetBodyString(mail.TypeTextPlain, msg.Body)

	return email, nil
}
