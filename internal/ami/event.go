// Package ami speaks the Asterisk-style manager interface: it decodes the
// event stream into flat key-value records and keeps the session alive.
package ami

import (
	"strconv"
	"strings"
)

// Event is one decoded manager event. Field names are normalized to lower
// case so handlers can read them regardless of the switch version's header
// capitalization.
type Event struct {
	fields map[string]string
}

// NewEvent creates an Event from a field map, normalizing keys to lower case.
func NewEvent(fields map[string]string) Event {
	normalized := make(map[string]string, len(fields))
	for k, v := range fields {
		normalized[strings.ToLower(k)] = v
	}
	return Event{fields: normalized}
}

// Get returns the value for the given field, or empty string if absent.
func (e Event) Get(key string) string {
	return e.fields[strings.ToLower(key)]
}

// GetInt returns the integer value for the given field, or 0 if absent or
// unparseable.
func (e Event) GetInt(key string) int {
	v, _ := strconv.Atoi(e.Get(key))
	return v
}

// Has reports whether the field is present, even when empty.
func (e Event) Has(key string) bool {
	_, ok := e.fields[strings.ToLower(key)]
	return ok
}

// Type returns the manager event kind (the Event header). Empty for
// responses and banner noise.
func (e Event) Type() string {
	return e.Get("event")
}

// IsResponse reports whether this record is an action response rather than
// an event.
func (e Event) IsResponse() bool {
	return e.Has("response")
}

// Len returns the number of decoded fields.
func (e Event) Len() int {
	return len(e.fields)
}
