package websocket

import "context"

// Transport adapts the hub to the notification transport interface so every
// published notification also reaches connected dashboard clients. The topic
// is already embedded in the envelope's event_type, so only the payload
// travels.
type Transport struct {
	hub *Hub
}

// NewTransport creates a hub-backed notification transport.
func NewTransport(hub *Hub) *Transport {
	return &Transport{hub: hub}
}

func (t *Transport) Publish(_ context.Context, _ string, payload []byte) error {
	t.hub.Broadcast(payload)
	return nil
}

// Close is a no-op: the hub outlives any single transport.
func (t *Transport) Close() error {
	return nil
}
