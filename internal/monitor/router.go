// Package monitor translates raw switch events into canonical queue
// notifications, reconciling the persisted caller/member side-state along
// the way.
package monitor

import (
	"context"

	"github.com/mfeld/queuebridge/internal/ami"
	"github.com/mfeld/queuebridge/internal/metrics"
	"github.com/rs/zerolog"
)

// HandlerFunc handles one raw event. A returned error drops that single
// event; it never stops the loop.
type HandlerFunc func(ctx context.Context, evt ami.Event) error

// Router dispatches raw events to their registered handlers by exact,
// case-sensitive event-kind match. Events with no registered handler are
// ignored: the switch emits far more kinds than this service cares about.
type Router struct {
	handlers map[string]HandlerFunc
	logger   zerolog.Logger
}

// NewRouter creates an empty Router.
func NewRouter(logger zerolog.Logger) *Router {
	return &Router{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
	}
}

// Register binds a handler to an event kind. Registering the same kind again
// replaces the previous handler.
func (r *Router) Register(kind string, h HandlerFunc) {
	r.handlers[kind] = h
}

// Dispatch routes one event to its handler and runs it to completion.
// Callers invoke Dispatch serially; ordering of events for the same queue
// entity depends on that.
func (r *Router) Dispatch(ctx context.Context, evt ami.Event) {
	m := metrics.Get()
	m.RecordEventReceived()

	kind := evt.Type()
	handler, ok := r.handlers[kind]
	if !ok {
		m.RecordUnknownEvent()
		r.logger.Debug().Str("event", kind).Msg("no handler registered, ignoring")
		return
	}

	if err := handler(ctx, evt); err != nil {
		m.RecordEventDropped()
		r.logger.Warn().Err(err).Str("event", kind).Msg("event dropped")
		return
	}
	m.RecordEventDispatched()
}
