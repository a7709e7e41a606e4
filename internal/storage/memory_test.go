package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/mfeld/queuebridge/internal/types"
)

func TestCreateGetCaller(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.CreateCaller(ctx, types.QueueCaller{
		QueueID: "Support",
		UUID:    "abc123",
		Name:    "Alice",
		Number:  "1234567",
		Status:  types.CallerWaiting,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be assigned on create")
	}

	got, err := s.GetCaller(ctx, "Support", "abc123")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != created {
		t.Errorf("get returned %+v, want %+v", got, created)
	}
}

func TestCreateCallerDuplicate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	caller := types.QueueCaller{QueueID: "Support", UUID: "abc123", Status: types.CallerWaiting}
	if _, err := s.CreateCaller(ctx, caller); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := s.CreateCaller(ctx, caller)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUpdateCallerPartial(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.CreateCaller(ctx, types.QueueCaller{
		QueueID: "Support", UUID: "abc123", Name: "Alice", Status: types.CallerWaiting,
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := s.UpdateCaller(ctx, "Support", "abc123", types.CallerUpdate{
		Status:     types.CallerStatusPtr(types.CallerAlerting),
		MemberUUID: types.String("agent-7"),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != types.CallerAlerting {
		t.Errorf("expected alerting status, got %d", updated.Status)
	}
	if updated.MemberUUID != "agent-7" {
		t.Errorf("expected member_uuid agent-7, got %q", updated.MemberUUID)
	}
	if updated.Name != "Alice" {
		t.Errorf("untouched field changed: name %q", updated.Name)
	}
}

func TestUpdateCallerNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.UpdateCaller(context.Background(), "Support", "missing", types.CallerUpdate{
		Status: types.CallerStatusPtr(types.CallerConnected),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCallerNotFound(t *testing.T) {
	s := NewMemoryStore()

	err := s.DeleteCaller(context.Background(), "Support", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCaller(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.CreateCaller(ctx, types.QueueCaller{QueueID: "Support", UUID: "abc123"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.DeleteCaller(ctx, "Support", "abc123"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.GetCaller(ctx, "Support", "abc123"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestQueueIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	// Same uuid in two queues must be two independent records.
	if _, err := s.CreateCaller(ctx, types.QueueCaller{QueueID: "Support", UUID: "abc123", Name: "Alice"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := s.CreateCaller(ctx, types.QueueCaller{QueueID: "Sales", UUID: "abc123", Name: "Bob"}); err != nil {
		t.Fatalf("create in second queue failed: %v", err)
	}

	if err := s.DeleteCaller(ctx, "Sales", "abc123"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	got, err := s.GetCaller(ctx, "Support", "abc123")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "Alice" {
		t.Errorf("cross-queue contamination: got %q", got.Name)
	}
}

func TestMemberLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	member := types.QueueMember{QueueID: "Support", UUID: "agent-7", Number: "1001", Status: types.MemberAvailable}
	if _, err := s.CreateMember(ctx, member); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := s.CreateMember(ctx, member); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	updated, err := s.UpdateMember(ctx, "Support", "agent-7", types.MemberUpdate{
		Status: types.MemberStatusPtr(types.MemberAlerting),
		Paused: types.Int(3),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != types.MemberAlerting || updated.Paused != 3 {
		t.Errorf("unexpected member after update: %+v", updated)
	}
	if updated.Number != "1001" {
		t.Errorf("untouched field changed: number %q", updated.Number)
	}

	if err := s.DeleteMember(ctx, "Support", "agent-7"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := s.DeleteMember(ctx, "Support", "agent-7"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on duplicate delete, got %v", err)
	}
}
