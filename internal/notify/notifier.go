package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mfeld/queuebridge/internal/metrics"
	"github.com/rs/zerolog"
)

// TopicPrefix namespaces every notification this service emits.
const TopicPrefix = "queue."

// Envelope is the wire form of one notification.
type Envelope struct {
	MessageID   string    `json:"message_id"`
	PublisherID string    `json:"publisher_id"`
	EventType   string    `json:"event_type"`
	Priority    string    `json:"priority"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload"`
}

// Notifier turns event kinds and payloads into enveloped notifications on
// the transport.
type Notifier struct {
	transport   Transport
	publisherID string
	logger      zerolog.Logger
}

// NewNotifier creates a Notifier publishing under the given fixed publisher
// identity.
func NewNotifier(transport Transport, publisherID string, logger zerolog.Logger) *Notifier {
	return &Notifier{
		transport:   transport,
		publisherID: publisherID,
		logger:      logger,
	}
}

// Topic converts an event kind to its full topic name: spaces become
// underscores and the queue namespace is prepended. "member alert" becomes
// "queue.member_alert".
func Topic(eventKind string) string {
	return TopicPrefix + strings.ReplaceAll(eventKind, " ", "_")
}

// Notify publishes one notification. The request context is fresh and
// carries no authenticated identity. The call blocks on transport I/O and
// does not retry; delivery guarantees belong to the transport.
func (n *Notifier) Notify(eventKind string, payload any) error {
	topic := Topic(eventKind)
	envelope := Envelope{
		MessageID:   uuid.NewString(),
		PublisherID: n.publisherID,
		EventType:   topic,
		Priority:    "INFO",
		Timestamp:   time.Now().UTC(),
		Payload:     payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshaling notification %s: %w", topic, err)
	}

	if err := n.transport.Publish(context.Background(), topic, data); err != nil {
		metrics.Get().RecordPublishError()
		return fmt.Errorf("publishing %s: %w", topic, err)
	}

	metrics.Get().RecordPublished()
	n.logger.Debug().Str("topic", topic).Msg("notification published")
	return nil
}
