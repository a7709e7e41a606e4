package notify

import (
	"context"
	"sync"
)

// Message records a single published notification.
type Message struct {
	Topic   string
	Payload []byte
}

// Mock records all publishes for test assertions.
type Mock struct {
	mu       sync.Mutex
	messages []Message
	closed   bool
	err      error
}

// NewMock creates a recording mock transport.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Publish(_ context.Context, topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	p := make([]byte, len(payload))
	copy(p, payload)
	m.messages = append(m.messages, Message{Topic: topic, Payload: p})
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Messages returns a copy of all recorded messages.
func (m *Mock) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := make([]Message, len(m.messages))
	copy(msgs, m.messages)
	return msgs
}

// Reset clears all recorded messages.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// SetError makes subsequent Publish calls return err. Pass nil to clear.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
