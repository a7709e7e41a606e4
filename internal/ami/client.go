package ami

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	dialTimeout      = 10 * time.Second
	reconnectBackoff = 5 * time.Second
)

// Options configures the manager-interface client.
type Options struct {
	Host      string
	Port      int
	Username  string
	Secret    string
	Keepalive time.Duration // interval for Ping actions; 0 disables
}

// Addr returns the host:port dial address.
func (o Options) Addr() string {
	return net.JoinHostPort(o.Host, fmt.Sprintf("%d", o.Port))
}

// HandleFunc consumes one decoded event. The client calls it serially: the
// next event is not read until the previous call returns, which is the
// ordering guarantee the downstream state machine depends on.
type HandleFunc func(Event)

// Client maintains a manager-interface session and feeds decoded events to a
// handler. Reconnects with a fixed backoff until the context is cancelled.
type Client struct {
	opts   Options
	logger zerolog.Logger
}

// NewClient creates a Client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	return &Client{opts: opts, logger: logger}
}

// Run connects and processes events until ctx is cancelled.
func (c *Client) Run(ctx context.Context, handle HandleFunc) error {
	for {
		err := c.session(ctx, handle)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			c.logger.Warn().Err(err).
				Dur("backoff", reconnectBackoff).
				Msg("manager session ended, reconnecting")
		}
		select {
		case <-time.After(reconnectBackoff):
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Client) session(ctx context.Context, handle HandleFunc) error {
	addr := c.opts.Addr()
	c.logger.Info().Str("addr", addr).Msg("connecting to manager interface")

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("dial manager interface: %w", err)
	}
	defer conn.Close()

	// Unblock the read loop when the context is cancelled.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	var writeMu sync.Mutex
	writeAction := func(action string) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_, err := conn.Write([]byte(action))
		return err
	}

	login := fmt.Sprintf("Action: Login\r\nUsername: %s\r\nSecret: %s\r\n\r\n",
		c.opts.Username, c.opts.Secret)
	if err := writeAction(login); err != nil {
		return fmt.Errorf("sending login: %w", err)
	}

	if c.opts.Keepalive > 0 {
		keepaliveCtx, stop := context.WithCancel(ctx)
		defer stop()
		go c.keepalive(keepaliveCtx, writeAction)
	}

	c.logger.Info().Msg("manager session established")

	parser := NewParser(conn)
	for {
		evt, ok := parser.Next()
		if !ok {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("manager connection closed")
		}
		if evt.IsResponse() {
			continue
		}
		handle(evt)
	}
}

// keepalive sends Ping actions so idle sessions are not reaped by the
// switch or an intermediate firewall.
func (c *Client) keepalive(ctx context.Context, write func(string) error) {
	ticker := time.NewTicker(c.opts.Keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := write("Action: Ping\r\n\r\n"); err != nil {
				c.logger.Debug().Err(err).Msg("keepalive write failed")
				return
			}
		}
	}
}
