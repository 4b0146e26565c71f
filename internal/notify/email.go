// Package notify sends the optional completion email after a matching run.
// Failures here are reported to the caller but must never fail the run.
package notify

import (
	"fmt"

	mail "github.com/wneessen/go-mail"
)

// SMTPConfig carries the transport settings. Password comes from the secrets
// loader, never from a literal.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// Mailer sends completion notices over SMTP.
type Mailer struct {
	cfg SMTPConfig
}

func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp sender address is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	return &Mailer{cfg: cfg}, nil
}

// Send delivers a completion notice for one resume's run.
func (m *Mailer) Send(to, resume string, matched int) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	msg.Subject("Job matching completed")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hi,\n\nThe job matching run for resume %q has completed.\nMatched jobs: %d\n\nThanks!\n",
		resume, matched,
	))

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}

	return nil
}
