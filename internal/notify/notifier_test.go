package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestTopic(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{"enter", "queue.enter"},
		{"exit", "queue.exit"},
		{"member alert", "queue.member_alert"},
		{"member ring no answer", "queue.member_ring_no_answer"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			if got := Topic(tt.kind); got != tt.want {
				t.Errorf("Topic(%q) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestNotifyEnvelope(t *testing.T) {
	mock := NewMock()
	n := NewNotifier(mock, "queuebridge", zerolog.Nop())

	payload := map[string]any{"reason": 19}
	if err := n.Notify("member cancel", payload); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	msgs := mock.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Topic != "queue.member_cancel" {
		t.Errorf("expected topic queue.member_cancel, got %q", msgs[0].Topic)
	}

	var envelope Envelope
	if err := json.Unmarshal(msgs[0].Payload, &envelope); err != nil {
		t.Fatalf("failed to parse envelope: %v", err)
	}
	if envelope.PublisherID != "queuebridge" {
		t.Errorf("expected publisher_id queuebridge, got %q", envelope.PublisherID)
	}
	if envelope.EventType != "queue.member_cancel" {
		t.Errorf("expected event_type queue.member_cancel, got %q", envelope.EventType)
	}
	if envelope.Priority != "INFO" {
		t.Errorf("expected priority INFO, got %q", envelope.Priority)
	}
	if envelope.MessageID == "" {
		t.Error("expected a message id")
	}
	if envelope.Timestamp.IsZero() {
		t.Error("expected a timestamp")
	}
}

func TestNotifyTransportError(t *testing.T) {
	mock := NewMock()
	mock.SetError(errors.New("broker unavailable"))
	n := NewNotifier(mock, "queuebridge", zerolog.Nop())

	if err := n.Notify("enter", map[string]any{}); err == nil {
		t.Fatal("expected transport error to surface")
	}
}

func TestFanout(t *testing.T) {
	a := NewMock()
	b := NewMock()
	f := NewFanout(a, b)

	n := NewNotifier(f, "queuebridge", zerolog.Nop())
	if err := n.Notify("enter", map[string]any{}); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	if len(a.Messages()) != 1 || len(b.Messages()) != 1 {
		t.Errorf("expected both transports to receive the message, got %d/%d",
			len(a.Messages()), len(b.Messages()))
	}
}

func TestFanoutPartialFailure(t *testing.T) {
	a := NewMock()
	a.SetError(errors.New("down"))
	b := NewMock()
	f := NewFanout(a, b)

	err := f.Publish(context.Background(), "queue.enter", []byte("{}"))
	if err == nil {
		t.Fatal("expected error from failing transport")
	}
	// Healthy transport still got the message.
	if len(b.Messages()) != 1 {
		t.Errorf("expected healthy transport to receive the message, got %d", len(b.Messages()))
	}
}
