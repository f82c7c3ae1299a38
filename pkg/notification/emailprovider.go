package notification

import (
	"log/slog"

	"github.com/tendant/simple-verify/pkg/config"
	"github.com/tendant/simple-verify/pkg/utils"
)

// EmailProvider delivers verification codes over SMTP, rendering the default
// verify email templates with the per-send data.
type EmailProvider struct {
	sender       *MailSender
	subject      string
	textTemplate string
	htmlTemplate string
}

// NewEmailProvider creates an smtp channel provider for a channel key.
func NewEmailProvider(channelKey string, cfg config.ProviderConfig) (*EmailProvider, error) {
	sender, err := NewMailSender(cfg.SMTP, "", "", "")
	if err != nil {
		return nil, err
	}
	return &EmailProvider{
		sender:       sender,
		subject:      cfg.Subject,
		textTemplate: LoadTemplate("templates/email/verify_email.txt"),
		htmlTemplate: LoadTemplate("templates/email/verify_email.html"),
	}, nil
}

// Send renders the verify templates and mails the result to the recipient.
func (p *EmailProvider) Send(recipient string, data map[string]string) error {
	textBody, err := RenderText(p.textTemplate, data)
	if err != nil {
		slog.Error("Failed to render verify email text template", "err", err)
		return err
	}

	var htmlBody string
	if p.htmlTemplate != "" {
		htmlBody, err = RenderHTML(p.htmlTemplate, data)
		if err != nil {
			slog.Error("Failed to render verify email html template", "err", err)
			return err
		}
	}

	if err := p.sender.SendMail(recipient, p.subject, textBody, htmlBody); err != nil {
		return err
	}
	slog.Info("Sent verification email", "to", utils.MaskEmail(recipient))
	return nil
}

func init() {
	RegisterProviderFactory("smtp", func(channelKey string, cfg config.ProviderConfig) (Provider, error) {
		return NewEmailProvider(channelKey, cfg)
	})
}
