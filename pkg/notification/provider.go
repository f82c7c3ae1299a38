package notification

// Provider delivers a verification code to a recipient over one channel
// (email, SMS, or a debug log). A provider is bound to a channel key once at
// configuration load and never changes afterwards.
//
// Send failures are not retried here; they propagate to the request flow
// caller, which reports them as delivery errors.
type Provider interface {
	Send(recipient string, data map[string]string) error
}
