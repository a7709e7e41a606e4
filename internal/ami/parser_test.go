package ami

import (
	"strings"
	"testing"
)

func TestParserSingleEvent(t *testing.T) {
	stream := "Event: Join\r\n" +
		"Queue: Support\r\n" +
		"Uniqueid: 1234567890.12\r\n" +
		"Position: 2\r\n" +
		"\r\n"

	p := NewParser(strings.NewReader(stream))
	evt, ok := p.Next()
	if !ok {
		t.Fatal("expected an event")
	}
	if evt.Type() != "Join" {
		t.Errorf("expected type Join, got %q", evt.Type())
	}
	if evt.Get("queue") != "Support" {
		t.Errorf("expected queue Support, got %q", evt.Get("queue"))
	}
	if evt.GetInt("position") != 2 {
		t.Errorf("expected position 2, got %d", evt.GetInt("position"))
	}
}

func TestParserSkipsBanner(t *testing.T) {
	stream := "Asterisk Call Manager/1.3\r\n" +
		"Event: QueueMemberPaused\r\n" +
		"Queue: Support\r\n" +
		"\r\n"

	p := NewParser(strings.NewReader(stream))
	evt, ok := p.Next()
	if !ok {
		t.Fatal("expected an event")
	}
	if evt.Type() != "QueueMemberPaused" {
		t.Errorf("expected QueueMemberPaused, got %q", evt.Type())
	}
}

func TestParserMultipleEvents(t *testing.T) {
	stream := "Event: Join\r\nQueue: Support\r\n\r\n" +
		"Response: Success\r\nPing: Pong\r\n\r\n" +
		"Event: QueueCallerAbandon\r\nQueue: Support\r\n\r\n"

	p := NewParser(strings.NewReader(stream))

	var events []Event
	for {
		evt, ok := p.Next()
		if !ok {
			break
		}
		events = append(events, evt)
	}

	if len(events) != 3 {
		t.Fatalf("expected 3 records, got %d", len(events))
	}
	if !events[1].IsResponse() {
		t.Error("expected second record to be a response")
	}
	if events[2].Type() != "QueueCallerAbandon" {
		t.Errorf("expected QueueCallerAbandon, got %q", events[2].Type())
	}
}

func TestParserEOFMidEvent(t *testing.T) {
	// Pending fields at EOF are still returned.
	p := NewParser(strings.NewReader("Event: Join\r\nQueue: Support\r\n"))
	evt, ok := p.Next()
	if !ok {
		t.Fatal("expected pending event at EOF")
	}
	if evt.Get("queue") != "Support" {
		t.Errorf("expected queue Support, got %q", evt.Get("queue"))
	}
	if _, ok := p.Next(); ok {
		t.Error("expected end of stream")
	}
}

func TestEventCaseInsensitive(t *testing.T) {
	evt := NewEvent(map[string]string{"MemberName": "SIP/1001", "Paused": "1"})

	if evt.Get("membername") != "SIP/1001" {
		t.Errorf("lowercase lookup failed: %q", evt.Get("membername"))
	}
	if evt.Get("MEMBERNAME") != "SIP/1001" {
		t.Errorf("uppercase lookup failed: %q", evt.Get("MEMBERNAME"))
	}
	if !evt.Has("paused") {
		t.Error("expected paused field to be present")
	}
	if evt.Has("queue") {
		t.Error("did not expect queue field")
	}
}
