package account

import (
	"sync"

	"github.com/jvre/memberd/notify/email"
)

// mockMailer records outbound messages and can simulate transport failures.
type mockMailer struct {
	mu       sync.Mutex
	messages []email.Message

	// SendError is returned for every send when set.
	SendError error
	// FailAfter fails every send once this many messages went through.
	// Zero means no limit.
	FailAfter int
}

func (m *mockMailer) Send(msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendError != nil {
		return m.SendError
	}
	if m.FailAfter > 0 && len(m.messages) >= m.FailAfter {
		return errTransport
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockMailer) Messages() []email.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]email.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *mockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	m.SendError = nil
	m.FailAfter = 0
}

// mockTemplates simulates an unreadable template store.
type mockTemplates struct {
	RenderError error
}

func (m *mockTemplates) Render(name string, data any) (string, error) {
	if m.RenderError != nil {
		return "", m.RenderError
	}
	return email.NewStore("").Render(name, data)
}
