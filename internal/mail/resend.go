package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

type ResendMailer struct {
	client *resend.Client
	log    *zap.Logger
}

func NewResendMailer(apiKey string, log *zap.Logger) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey), log: log}
}

func (r *ResendMailer) Send(_ context.Context, m Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	sent, err := r.client.Emails.Send(&resend.SendEmailRequest{
		From:    m.From,
		To:      m.To,
		Cc:      m.Cc,
		ReplyTo: m.ReplyTo,
		Subject: m.Subject,
		Text:    m.Text,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	r.log.Debug("sent mail via resend", zap.String("id", sent.Id), zap.Strings("to", m.To))
	return nil
}
