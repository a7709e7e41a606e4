// Package storage persists queue side-state: the callers currently waiting
// in or being served by a queue, and the members logged into it.
package storage

import (
	"context"
	"errors"

	"github.com/mfeld/queuebridge/internal/types"
)

// ErrNotFound is returned when no live record exists for a composite key.
// The event stream has no delivery guarantee, so not-found on update and
// delete is an expected steady-state condition for callers to absorb.
var ErrNotFound = errors.New("storage: record not found")

// ErrAlreadyExists is returned by Create when the key is live. Duplicate
// create events are expected; callers decide whether to upsert or ignore.
var ErrAlreadyExists = errors.New("storage: record already exists")

// Store defines the persisted-state operations the event handlers need.
// All records are keyed by (queueID, uuid).
type Store interface {
	CreateCaller(ctx context.Context, caller types.QueueCaller) (types.QueueCaller, error)
	GetCaller(ctx context.Context, queueID, uuid string) (types.QueueCaller, error)
	UpdateCaller(ctx context.Context, queueID, uuid string, upd types.CallerUpdate) (types.QueueCaller, error)
	DeleteCaller(ctx context.Context, queueID, uuid string) error

	CreateMember(ctx context.Context, member types.QueueMember) (types.QueueMember, error)
	GetMember(ctx context.Context, queueID, uuid string) (types.QueueMember, error)
	UpdateMember(ctx context.Context, queueID, uuid string, upd types.MemberUpdate) (types.QueueMember, error)
	DeleteMember(ctx context.Context, queueID, uuid string) error
}
