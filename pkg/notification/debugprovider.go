package notification

import (
	"log/slog"

	"github.com/tendant/simple-verify/pkg/config"
)

// DebugProvider logs the verification code instead of delivering it.
// Useful for local development and demo setups without a mail server.
type DebugProvider struct {
	channelKey string
}

// Send logs the recipient and template data.
func (p *DebugProvider) Send(recipient string, data map[string]string) error {
	slog.Info("Debug provider send", "channel", p.channelKey, "recipient", recipient, "code", data["Code"], "link", data["Link"])
	return nil
}

func init() {
	RegisterProviderFactory("debug", func(channelKey string, cfg config.ProviderConfig) (Provider, error) {
		return &DebugProvider{channelKey: channelKey}, nil
	})
}
