package notification

import (
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/tendant/simple-verify/pkg/config"
	"github.com/tendant/simple-verify/pkg/utils"
)

// SMSProvider delivers verification codes via the Twilio messaging API.
type SMSProvider struct {
	client       *twilio.RestClient
	from         string
	textTemplate string
}

// NewSMSProvider creates a twilio channel provider for a channel key.
func NewSMSProvider(channelKey string, cfg config.ProviderConfig) (*SMSProvider, error) {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.Twilio.AccountSid,
		Password: cfg.Twilio.AuthToken,
	})
	return &SMSProvider{
		client:       client,
		from:         cfg.Twilio.From,
		textTemplate: LoadTemplate("templates/sms/verify_sms.txt"),
	}, nil
}

// Send renders the SMS template and sends the message.
func (p *SMSProvider) Send(recipient string, data map[string]string) error {
	body, err := RenderText(p.textTemplate, data)
	if err != nil {
		slog.Error("Failed to render verify sms template", "err", err)
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(p.from)
	params.SetBody(body)

	if _, err := p.client.Api.CreateMessage(params); err != nil {
		slog.Error("Failed to send sms", "err", err, "to", utils.MaskPhone(recipient))
		return err
	}

	slog.Info("Sent verification sms", "to", utils.MaskPhone(recipient))
	return nil
}

func init() {
	RegisterProviderFactory("twilio", func(channelKey string, cfg config.ProviderConfig) (Provider, error) {
		return NewSMSProvider(channelKey, cfg)
	})
}
