// Package mail sends plain-text messages through SMTP or the Resend API.
package mail

import (
	"context"
	"fmt"

	"github.com/civic-action/platform/internal/config"
	"go.uber.org/zap"
)

type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (m Message) Validate() error {
	if m.From == "" {
		return fmt.Errorf("mail: missing sender")
	}
	if len(m.To) == 0 {
		return fmt.Errorf("mail: no recipients")
	}
	return nil
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// New picks the provider configured by EMAIL_PROVIDER.
func New(cfg *config.Config, log *zap.Logger) (Mailer, error) {
	switch cfg.EmailProvider {
	case "smtp", "":
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, log), nil
	case "resend":
		return NewResendMailer(cfg.ResendAPIKey, log), nil
	}
	return nil, fmt.Errorf("unknown email provider %q", cfg.EmailProvider)
}
