// Package session implements the Tech2 diagnostic session client: the
// connection/session/security state machine and the diagnostic services
// that run inside it.
package session

import (
	"errors"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/opentech2/go-tech2/protocol"
	"github.com/opentech2/go-tech2/transport"
)

// Client drives a diagnostic session against a Tech2 over a serial
// channel. It owns the channel exclusively for its lifetime; it is not
// safe for concurrent use.
type Client struct {
	port  transport.Port
	cfg   Config
	state State

	// lastExchange is the wall-clock time of the last successful write,
	// used to decide when a keep-alive is due
	lastExchange time.Time
}

// New creates a Client over an open channel. The channel is owned by the
// Client from this point; Disconnect closes it.
func New(port transport.Port, opts ...Option) *Client {
	if port == nil {
		panic("port cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		port:  port,
		cfg:   cfg,
		state: StateDisconnected,
	}
}

// State returns the current session state.
func (c *Client) State() State {
	return c.state
}

// Connect prepares the channel for use and moves the session to
// connected. Stale input from a previous session is discarded.
func (c *Client) Connect() error {
	if err := c.port.ResetInputBuffer(); err != nil {
		return &ChannelError{Op: "connect", Err: err}
	}
	c.state = StateConnected
	c.lastExchange = time.Now()
	c.logInfo("connected")
	return nil
}

// Disconnect ends the session and closes the channel. If a session was
// active a courtesy restart command is sent first so the device returns
// to its idle mode. The session is disconnected afterwards regardless of
// errors on the way out.
func (c *Client) Disconnect() error {
	if c.state >= StateSessionStarted {
		c.logDebug("sending restart before disconnect")
		if _, err := c.port.Write(protocol.RestartCmd); err != nil {
			c.logError("restart on disconnect failed", "err", err)
		}
	}

	err := c.port.Close()
	c.state = StateDisconnected
	c.logInfo("disconnected")
	return err
}

// sendAndReceive writes a command frame and collects the response, with
// stale-input flushing, a per-attempt deadline and the configured retry
// budget. Timeouts after all attempts surface as *TimeoutError; channel
// failures surface as *ChannelError and reset the session.
func (c *Client) sendAndReceive(op string, cmd []byte) ([]byte, error) {
	var resp []byte

	err := retry.Do(func() error {
		if err := c.port.ResetInputBuffer(); err != nil {
			return &ChannelError{Op: op, Err: err}
		}

		if _, err := c.port.Write(cmd); err != nil {
			return &ChannelError{Op: op, Err: err}
		}
		c.lastExchange = time.Now()

		buf, err := transport.ReadFrame(c.port, c.cfg.Timeout)
		if err != nil {
			if errors.Is(err, transport.ErrReadTimeout) {
				return err
			}
			return &ChannelError{Op: op, Err: err}
		}

		resp = buf
		return nil
	},
		retry.Attempts(uint(c.cfg.Retries)),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(c.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logDebug("retrying", "op", op, "attempt", n+1, "err", err)
		}),
	)

	if err != nil {
		if errors.Is(err, transport.ErrReadTimeout) {
			return nil, &TimeoutError{Op: op, Attempts: c.cfg.Retries}
		}
		var chErr *ChannelError
		if errors.As(err, &chErr) {
			c.state = StateDisconnected
			return nil, chErr
		}
		return nil, err
	}

	c.lastExchange = time.Now()
	c.logDebug("rx", "op", op, "frame", resp)
	return resp, nil
}

// maintainSession sends a keep-alive if the channel has been idle longer
// than the configured interval while a session is active. Called before
// every service request.
func (c *Client) maintainSession() {
	if c.state < StateSessionStarted {
		return
	}
	if time.Since(c.lastExchange) <= c.cfg.KeepAliveInterval {
		return
	}
	if err := c.TesterPresent(); err != nil {
		c.logError("keep-alive failed", "err", err)
	}
}

// require returns a StateError unless the session has reached the given
// state. No channel I/O happens on failure.
func (c *Client) require(op string, required State) error {
	if c.state < required {
		return &StateError{Op: op, State: c.state, Required: required}
	}
	return nil
}

func (c *Client) logDebug(msg string, keysAndValues ...interface{}) {
	if c.cfg.Logger != nil {
		c.cfg.Logger.Debug(msg, keysAndValues...)
	}
}

func (c *Client) logInfo(msg string, keysAndValues ...interface{}) {
	if c.cfg.Logger != nil {
		c.cfg.Logger.Info(msg, keysAndValues...)
	}
}

func (c *Client) logError(msg string, keysAndValues ...interface{}) {
	if c.cfg.Logger != nil {
		c.cfg.Logger.Error(msg, keysAndValues...)
	}
}
