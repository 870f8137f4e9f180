// pantry/email/email.go
// Package email sends mail over SMTP. It wraps github.com/wneessen/go-mail
// with the defaults the application needs for account activation.
package email

import (
	"context"
	"errors"
	"fmt"
	"text/template"
	"time"

	"github.com/wneessen/go-mail"
)

// Config holds SMTP server configuration.
type Config struct {
	// Host is the SMTP server hostname. An empty Host disables sending.
	Host string

	// Port is the SMTP server port (typically 587 for STARTTLS, 465 for SSL)
	Port int

	Username string
	Password string

	// FromAddress is the sender email address
	FromAddress string

	// FromName is the sender display name (optional)
	FromName string

	// Timeout for SMTP operations (default: 30 seconds)
	Timeout time.Duration
}

// Enabled reports whether a host is configured.
func (c Config) Enabled() bool { return c.Host != "" }

// Message is an email to send. The body is either TextBody or the result
// of executing TextTemplate with Data.
type Message struct {
	To           []string
	Subject      string
	TextBody     string
	TextTemplate *template.Template
	Data         any
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ErrDisabled is returned by a Sender without a configured host.
var ErrDisabled = errors.New("email: sending disabled")

// Sender sends emails using the configured SMTP server.
type Sender struct {
	cfg Config
}

// NewSender creates a new email sender with the given configuration.
func NewSender(cfg Config) *Sender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Sender{cfg: cfg}
}

// Send delivers msg.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Enabled() {
		return ErrDisabled
	}

	m, err := s.build(msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(s.cfg.Timeout),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	if s.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	c, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("email: failed to create client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("email: failed to send: %w", err)
	}
	return nil
}

func (s *Sender) build(msg Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("email: no recipients specified")
	}

	m := mail.NewMsg()
	if s.cfg.FromName != "" {
		if err := m.FromFormat(s.cfg.FromName, s.cfg.FromAddress); err != nil {
			return nil, fmt.Errorf("email: invalid from address: %w", err)
		}
	} else if err := m.From(s.cfg.FromAddress); err != nil {
		return nil, fmt.Errorf("email: invalid from address: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("email: invalid to address: %w", err)
	}
	m.Subject(msg.Subject)

	switch {
	case msg.TextTemplate != nil:
		if err := m.SetBodyTextTemplate(msg.TextTemplate, msg.Data); err != nil {
			return nil, fmt.Errorf("email: render body: %w", err)
		}
	case msg.TextBody != "":
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	default:
		return nil, fmt.Errorf("email: message body is empty")
	}
	return m, nil
}
