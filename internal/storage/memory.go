package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mfeld/queuebridge/internal/types"
)

type key struct {
	queueID string
	uuid    string
}

// MemoryStore keeps all records in process memory. It backs STORE_MODE=memory
// and serves as the store double in tests. Safe for concurrent use, though
// the event loop accesses it serially.
type MemoryStore struct {
	mu      sync.RWMutex
	callers map[key]types.QueueCaller
	members map[key]types.QueueMember
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		callers: make(map[key]types.QueueCaller),
		members: make(map[key]types.QueueMember),
	}
}

func (s *MemoryStore) CreateCaller(_ context.Context, caller types.QueueCaller) (types.QueueCaller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{caller.QueueID, caller.UUID}
	if _, exists := s.callers[k]; exists {
		return types.QueueCaller{}, fmt.Errorf("caller %s/%s: %w", caller.QueueID, caller.UUID, ErrAlreadyExists)
	}
	if caller.CreatedAt.IsZero() {
		caller.CreatedAt = time.Now().UTC()
	}
	s.callers[k] = caller
	return caller, nil
}

func (s *MemoryStore) GetCaller(_ context.Context, queueID, uuid string) (types.QueueCaller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	caller, exists := s.callers[key{queueID, uuid}]
	if !exists {
		return types.QueueCaller{}, fmt.Errorf("caller %s/%s: %w", queueID, uuid, ErrNotFound)
	}
	return caller, nil
}

func (s *MemoryStore) UpdateCaller(_ context.Context, queueID, uuid string, upd types.CallerUpdate) (types.QueueCaller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{queueID, uuid}
	caller, exists := s.callers[k]
	if !exists {
		return types.QueueCaller{}, fmt.Errorf("caller %s/%s: %w", queueID, uuid, ErrNotFound)
	}
	if upd.Name != nil {
		caller.Name = *upd.Name
	}
	if upd.Number != nil {
		caller.Number = *upd.Number
	}
	if upd.Position != nil {
		caller.Position = upd.Position
	}
	if upd.MemberUUID != nil {
		caller.MemberUUID = *upd.MemberUUID
	}
	if upd.Status != nil {
		caller.Status = *upd.Status
	}
	s.callers[k] = caller
	return caller, nil
}

func (s *MemoryStore) DeleteCaller(_ context.Context, queueID, uuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{queueID, uuid}
	if _, exists := s.callers[k]; !exists {
		return fmt.Errorf("caller %s/%s: %w", queueID, uuid, ErrNotFound)
	}
	delete(s.callers, k)
	return nil
}

func (s *MemoryStore) CreateMember(_ context.Context, member types.QueueMember) (types.QueueMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{member.QueueID, member.UUID}
	if _, exists := s.members[k]; exists {
		return types.QueueMember{}, fmt.Errorf("member %s/%s: %w", member.QueueID, member.UUID, ErrAlreadyExists)
	}
	s.members[k] = member
	return member, nil
}

func (s *MemoryStore) GetMember(_ context.Context, queueID, uuid string) (types.QueueMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	member, exists := s.members[key{queueID, uuid}]
	if !exists {
		return types.QueueMember{}, fmt.Errorf("member %s/%s: %w", queueID, uuid, ErrNotFound)
	}
	return member, nil
}

func (s *MemoryStore) UpdateMember(_ context.Context, queueID, uuid string, upd types.MemberUpdate) (types.QueueMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{queueID, uuid}
	member, exists := s.members[k]
	if !exists {
		return types.QueueMember{}, fmt.Errorf("member %s/%s: %w", queueID, uuid, ErrNotFound)
	}
	if upd.Number != nil {
		member.Number = *upd.Number
	}
	if upd.Status != nil {
		member.Status = *upd.Status
	}
	if upd.Paused != nil {
		member.Paused = *upd.Paused
	}
	s.members[k] = member
	return member, nil
}

func (s *MemoryStore) DeleteMember(_ context.Context, queueID, uuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{queueID, uuid}
	if _, exists := s.members[k]; !exists {
		return fmt.Errorf("member %s/%s: %w", queueID, uuid, ErrNotFound)
	}
	delete(s.members, k)
	return nil
}

// CallerCount returns the number of live caller records.
func (s *MemoryStore) CallerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.callers)
}

// MemberCount returns the number of live member records.
func (s *MemoryStore) MemberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}
