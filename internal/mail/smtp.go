package mail

import (
	"context"
	"crypto/tls"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type SMTPMailer struct {
	dialer *gomail.Dialer
	log    *zap.Logger
}

func NewSMTPMailer(host string, port int, username, password string, log *zap.Logger) *SMTPMailer {
	d := gomail.NewDialer(host, port, username, password)
	d.TLSConfig = &tls.Config{ServerName: host}
	return &SMTPMailer{dialer: d, log: log}
}

func (s *SMTPMailer) Send(_ context.Context, m Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.log.Debug("sending mail via smtp", zap.Strings("to", m.To), zap.String("subject", m.Subject))
	return s.dialer.DialAndSend(buildGomail(m))
}

func buildGomail(m Message) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To...)
	if len(m.Cc) > 0 {
		msg.SetHeader("Cc", m.Cc...)
	}
	if m.ReplyTo != "" {
		msg.SetHeader("Reply-To", m.ReplyTo)
	}
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Text)
	return msg
}
