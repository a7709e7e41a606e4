package monitor

import (
	"time"

	"github.com/mfeld/queuebridge/internal/types"
)

// Notification payload types. The nesting and key names are the wire
// contract consumed by downstream sinks; changing them breaks replay of
// historical notifications. Fields that may be unknown are pointers and
// render as null.

// Queue identifies the queue an event happened on.
type Queue struct {
	ID     string  `json:"id"`
	Name   *string `json:"name"`
	Number *string `json:"number"`
}

// Member describes the agent side of an event.
type Member struct {
	ID     *string `json:"id"`
	Name   *string `json:"name"`
	Number *string `json:"number"`
}

// Called carries the number the caller originally dialed.
type Called struct {
	Number *string `json:"number"`
}

// CallerRecord is the caller shape used by the enter/exit events. These two
// kinds key the caller by "uuid"; the member events use "id" — both forms
// are kept for compatibility with existing consumers.
type CallerRecord struct {
	UUID      string     `json:"uuid"`
	CreatedAt *time.Time `json:"created_at"`
	Name      *string    `json:"name"`
	Number    *string    `json:"number"`
	Position  *int       `json:"position"`
	QueueID   string     `json:"queue_id"`
}

// CallerRef is the caller shape used by the member events.
type CallerRef struct {
	ID     string  `json:"id"`
	Name   *string `json:"name"`
	Number *string `json:"number"`
}

type EnterPayload struct {
	Caller CallerRecord `json:"caller"`
	Queue  Queue        `json:"queue"`
}

type ExitPayload struct {
	Caller CallerRecord `json:"caller"`
	Queue  Queue        `json:"queue"`
	Reason int          `json:"reason"`
}

type MemberAlertPayload struct {
	Called Called    `json:"called"`
	Caller CallerRef `json:"caller"`
	Queue  Queue     `json:"queue"`
	Member Member    `json:"member"`
}

type MemberConnectPayload struct {
	Called Called    `json:"called"`
	Caller CallerRef `json:"caller"`
	Queue  Queue     `json:"queue"`
	Member Member    `json:"member"`
}

type MemberCancelPayload struct {
	Queue  Queue  `json:"queue"`
	Member Member `json:"member"`
	Reason int    `json:"reason"`
}

type MemberCompletePayload struct {
	Queue  Queue  `json:"queue"`
	Member Member `json:"member"`
}

type MemberLoginPayload struct {
	Queue  Queue  `json:"queue"`
	Member Member `json:"member"`
}

type MemberLogoutPayload struct {
	Queue  Queue  `json:"queue"`
	Member Member `json:"member"`
}

type MemberPausePayload struct {
	Queue  Queue  `json:"queue"`
	Member Member `json:"member"`
	Reason int    `json:"reason"`
}

type MemberStatePayload struct {
	Queue  Queue  `json:"queue"`
	Member Member `json:"member"`
	Status int    `json:"status"`
}

// nullable renders empty strings as JSON null rather than "".
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func callerRecord(c types.QueueCaller) CallerRecord {
	rec := CallerRecord{
		UUID:     c.UUID,
		Name:     nullable(c.Name),
		Number:   nullable(c.Number),
		Position: c.Position,
		QueueID:  c.QueueID,
	}
	if !c.CreatedAt.IsZero() {
		t := c.CreatedAt
		rec.CreatedAt = &t
	}
	return rec
}

func callerRef(c types.QueueCaller) CallerRef {
	return CallerRef{
		ID:     c.UUID,
		Name:   nullable(c.Name),
		Number: nullable(c.Number),
	}
}
