package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/mfeld/queuebridge/internal/ami"
	"github.com/rs/zerolog"
)

func TestDispatchUnknownKindIgnored(t *testing.T) {
	r := NewRouter(zerolog.Nop())

	// No handlers registered at all; must be a silent no-op.
	r.Dispatch(context.Background(), ami.NewEvent(map[string]string{
		"Event": "FullyBooted",
	}))
}

func TestDispatchRoutesByKind(t *testing.T) {
	r := NewRouter(zerolog.Nop())

	var handled []string
	r.Register("Join", func(_ context.Context, evt ami.Event) error {
		handled = append(handled, evt.Get("uniqueid"))
		return nil
	})

	r.Dispatch(context.Background(), ami.NewEvent(map[string]string{
		"Event":    "Join",
		"Uniqueid": "1700000000.42",
	}))
	r.Dispatch(context.Background(), ami.NewEvent(map[string]string{
		"Event": "Hangup",
	}))

	if len(handled) != 1 || handled[0] != "1700000000.42" {
		t.Errorf("expected exactly the Join event handled, got %v", handled)
	}
}

func TestDispatchHandlerErrorDropsEvent(t *testing.T) {
	r := NewRouter(zerolog.Nop())

	calls := 0
	r.Register("Join", func(context.Context, ami.Event) error {
		calls++
		return errors.New("store down")
	})

	evt := ami.NewEvent(map[string]string{"Event": "Join"})
	r.Dispatch(context.Background(), evt)
	r.Dispatch(context.Background(), evt)

	// The error drops the individual event but never the loop.
	if calls != 2 {
		t.Errorf("expected both dispatches to reach the handler, got %d", calls)
	}
}

func TestRegisterReplaces(t *testing.T) {
	r := NewRouter(zerolog.Nop())

	r.Register("Join", func(context.Context, ami.Event) error {
		t.Error("replaced handler must not run")
		return nil
	})
	ran := false
	r.Register("Join", func(context.Context, ami.Event) error {
		ran = true
		return nil
	})

	r.Dispatch(context.Background(), ami.NewEvent(map[string]string{"Event": "Join"}))
	if !ran {
		t.Error("expected replacement handler to run")
	}
}
