// Package notify publishes canonical queue notifications to the message bus.
package notify

import "context"

// Transport delivers a serialized notification to a topic. Delivery
// guarantees and retries are the transport's concern, not the caller's.
type Transport interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Close() error
}
