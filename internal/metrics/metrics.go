package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Metrics holds the process counters for the event loop and the bus.
type Metrics struct {
	mu sync.RWMutex

	// Event loop
	EventsReceivedTotal   int64
	EventsDispatchedTotal int64
	EventsDroppedTotal    int64
	UnknownEventsTotal    int64

	// Notification bus
	NotificationsPublishedTotal int64
	PublishErrorsTotal          int64

	// State store
	StoreErrorsTotal int64

	startTime time.Time
}

var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance.
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{startTime: time.Now()}
	})
	return instance
}

// RecordEventReceived counts one raw event read from the switch.
func (m *Metrics) RecordEventReceived() {
	m.mu.Lock()
	m.EventsReceivedTotal++
	m.mu.Unlock()
}

// RecordEventDispatched counts one event handled to completion.
func (m *Metrics) RecordEventDispatched() {
	m.mu.Lock()
	m.EventsDispatchedTotal++
	m.mu.Unlock()
}

// RecordEventDropped counts one event dropped by a failing handler.
func (m *Metrics) RecordEventDropped() {
	m.mu.Lock()
	m.EventsDroppedTotal++
	m.mu.Unlock()
}

// RecordUnknownEvent counts one event with no registered handler.
func (m *Metrics) RecordUnknownEvent() {
	m.mu.Lock()
	m.UnknownEventsTotal++
	m.mu.Unlock()
}

// RecordPublished counts one notification delivered to the transport.
func (m *Metrics) RecordPublished() {
	m.mu.Lock()
	m.NotificationsPublishedTotal++
	m.mu.Unlock()
}

// RecordPublishError counts one failed transport publish.
func (m *Metrics) RecordPublishError() {
	m.mu.Lock()
	m.PublishErrorsTotal++
	m.mu.Unlock()
}

// RecordStoreError counts one unexpected state-store failure. Not-found and
// already-exists outcomes are steady state and are not counted here.
func (m *Metrics) RecordStoreError() {
	m.mu.Lock()
	m.StoreErrorsTotal++
	m.mu.Unlock()
}

// Snapshot is the JSON form of the current counters.
type Snapshot struct {
	EventsReceived         int64   `json:"events_received"`
	EventsDispatched       int64   `json:"events_dispatched"`
	EventsDropped          int64   `json:"events_dropped"`
	UnknownEvents          int64   `json:"unknown_events"`
	NotificationsPublished int64   `json:"notifications_published"`
	PublishErrors          int64   `json:"publish_errors"`
	StoreErrors            int64   `json:"store_errors"`
	UptimeSeconds          float64 `json:"uptime_seconds"`
}

// GetSnapshot returns a copy of the current counters.
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		EventsReceived:         m.EventsReceivedTotal,
		EventsDispatched:       m.EventsDispatchedTotal,
		EventsDropped:          m.EventsDroppedTotal,
		UnknownEvents:          m.UnknownEventsTotal,
		NotificationsPublished: m.NotificationsPublishedTotal,
		PublishErrors:          m.PublishErrorsTotal,
		StoreErrors:            m.StoreErrorsTotal,
		UptimeSeconds:          time.Since(m.startTime).Seconds(),
	}
}

// Handler serves the counters as JSON.
func (m *Metrics) Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m.GetSnapshot())
}
