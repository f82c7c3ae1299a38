package notification

// SentMessage records a single mock delivery.
type SentMessage struct {
	Recipient string
	Data      map[string]string
}

// MockProvider records sends for assertions in tests.
type MockProvider struct {
	Sent []SentMessage
	Err  error // returned from Send when set
}

func (m *MockProvider) Send(recipient string, data map[string]string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMessage{Recipient: recipient, Data: data})
	return nil
}
