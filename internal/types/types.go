package types

import "time"

// CallerStatus represents the lifecycle state of a queue caller.
// Values match the switch's queue-entry vocabulary.
type CallerStatus int

const (
	CallerWaiting   CallerStatus = 1
	CallerAlerting  CallerStatus = 2
	CallerConnected CallerStatus = 3
	CallerCancelled CallerStatus = 4
)

// MemberStatus represents the device state of a queue member. Values match
// the switch's device-state codes; both the ringing and alerting codes exist
// because the vocabulary differs between switch versions.
type MemberStatus int

const (
	MemberAvailable MemberStatus = 1
	MemberRinging   MemberStatus = 2
	MemberAlerting  MemberStatus = 6
	MemberCancelled MemberStatus = 7
)

// QueueCaller is a call waiting in or being served by a queue.
// At most one live record exists per (QueueID, UUID).
type QueueCaller struct {
	QueueID    string       `json:"queue_id" dynamodbav:"QueueID"`
	UUID       string       `json:"uuid" dynamodbav:"UUID"`
	Name       string       `json:"name,omitempty" dynamodbav:"Name"`
	Number     string       `json:"number,omitempty" dynamodbav:"Number"`
	CreatedAt  time.Time    `json:"created_at" dynamodbav:"CreatedAt"`
	Position   *int         `json:"position,omitempty" dynamodbav:"Position"`
	MemberUUID string       `json:"member_uuid,omitempty" dynamodbav:"MemberUUID"`
	Status     CallerStatus `json:"status" dynamodbav:"Status"`
}

// QueueMember is an agent logged into a queue.
// At most one live record exists per (QueueID, UUID).
type QueueMember struct {
	QueueID string       `json:"queue_id" dynamodbav:"QueueID"`
	UUID    string       `json:"uuid" dynamodbav:"UUID"`
	Number  string       `json:"number,omitempty" dynamodbav:"Number"`
	Status  MemberStatus `json:"status" dynamodbav:"Status"`
	// Paused carries the switch's pause reason code; zero means not paused.
	// It is an independent axis from Status.
	Paused int `json:"paused" dynamodbav:"Paused"`
}

// CallerUpdate describes a partial update to a QueueCaller. Nil fields are
// left untouched.
type CallerUpdate struct {
	Name       *string
	Number     *string
	Position   *int
	MemberUUID *string
	Status     *CallerStatus
}

// MemberUpdate describes a partial update to a QueueMember. Nil fields are
// left untouched.
type MemberUpdate struct {
	Number *string
	Status *MemberStatus
	Paused *int
}

// Pointer helpers for building partial updates.

func String(s string) *string { return &s }

func Int(i int) *int { return &i }

func CallerStatusPtr(s CallerStatus) *CallerStatus { return &s }

func MemberStatusPtr(s MemberStatus) *MemberStatus { return &s }
