package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Fanout delivers each notification to every wrapped transport. Used to tee
// the bus traffic into the dashboard websocket hub.
type Fanout struct {
	transports []Transport
}

// NewFanout creates a Fanout over the given transports.
func NewFanout(transports ...Transport) *Fanout {
	return &Fanout{transports: transports}
}

func (f *Fanout) Publish(ctx context.Context, topic string, payload []byte) error {
	var errs []error
	for _, t := range f.transports {
		if err := t.Publish(ctx, topic, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) Close() error {
	var errs []error
	for _, t := range f.transports {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogTransport logs notifications instead of publishing them. Used when the
// bus is disabled (NOTIFY_MODE=log).
type LogTransport struct {
	logger zerolog.Logger
}

// NewLogTransport creates a LogTransport.
func NewLogTransport(logger zerolog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Publish(_ context.Context, topic string, payload []byte) error {
	t.logger.Info().
		Str("topic", topic).
		RawJSON("notification", payload).
		Msg("notification (bus disabled)")
	return nil
}

func (t *LogTransport) Close() error { return nil }
