// Package notification provides the channel-provider abstraction used to
// deliver verification codes, plus the SMTP mail sender shared with the
// reset-password flow.
//
// A provider is selected by configuration name at startup:
//
//	provider, err := notification.NewProvider("email", cfg.Provider)
//	...
//	err = provider.Send(recipient, map[string]string{"Code": code, "Link": link})
//
// Built-in providers:
//
//   - "smtp"   — email via go-mail, rendering the embedded verify templates
//   - "twilio" — SMS via the Twilio messaging API
//   - "debug"  — logs the code instead of delivering it
//
// Applications can register additional providers with
// RegisterProviderFactory before configuration load.
package notification
