package notification

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/tendant/simple-verify/pkg/config"
)

// MailSender wraps an SMTP client with fixed sender identity. It is shared
// by the smtp channel provider and the reset-password flow.
type MailSender struct {
	client      *mail.Client
	from        string
	fromName    string
	replyTo     string
	replyToName string
}

// NewMailSender creates a mail sender from SMTP settings. It fails when the
// mail server host is not configured, so a misconfigured deployment is
// caught at startup rather than on the first send.
func NewMailSender(cfg config.SMTPConfig, senderName, replyTo, replyToName string) (*MailSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail server is not configured, set SMTP_HOST")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(30 * time.Second),
	}

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	if !cfg.TLS {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.NoTLS),
		)
	} else {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.TLSMandatory),
		)
	}

	slog.Info("Creating mail client", "host", cfg.Host, "port", cfg.Port)
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		slog.Error("Failed to create mail client", "err", err)
		return nil, err
	}

	return &MailSender{
		client:      client,
		from:        cfg.From,
		fromName:    senderName,
		replyTo:     replyTo,
		replyToName: replyToName,
	}, nil
}

// SendMail sends a message with a plain-text body and an optional HTML
// alternative.
func (s *MailSender) SendMail(to, subject, textBody, htmlBody string) error {
	msg := mail.NewMsg()

	var err error
	if s.fromName != "" {
		err = msg.FromFormat(s.fromName, s.from)
	} else {
		err = msg.From(s.from)
	}
	if err != nil {
		slog.Error("Failed to set from address", "err", err)
		return err
	}

	if err := msg.To(to); err != nil {
		slog.Error("Failed to set to address", "err", err)
		return err
	}

	if s.replyTo != "" {
		if err := msg.ReplyTo(s.replyTo); err != nil {
			slog.Error("Failed to set reply-to address", "err", err)
			return err
		}
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, textBody)
	if htmlBody != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)
	}

	if err := s.client.DialAndSend(msg); err != nil {
		slog.Error("Failed to send email", "err", err)
		return err
	}
	return nil
}
