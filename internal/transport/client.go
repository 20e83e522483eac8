package transport

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"

	"github.com/kngcl/codebattle2-sub001/internal/models"
)

// Client is the production transport state machine. The underlying
// channel comes from the injected Dialer, so the same reconnect logic
// drives both the websocket transport and deterministic test dialers.
type Client struct {
	dialer       Dialer
	baseInterval time.Duration
	maxAttempts  int
	dialTimeout  time.Duration
	logger       *logrus.Logger

	mu            sync.Mutex
	state         State
	conn          Conn
	sessionID     string
	participantID string

	// gen is bumped on every Connect and Disconnect so stale retry
	// timers and read loops from a previous lifecycle become no-ops
	gen      int
	attempts int
	retry    *backoff.ExponentialBackOff
	timer    *time.Timer

	handlers     map[models.EventType][]Handler
	connHandlers []func(connected bool)
}

// ClientConfig is an alias kept for wiring readability
type ClientConfig = Config

// NewClient creates a client transport
func NewClient(cfg *Config, logger *logrus.Logger) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Dialer == nil {
		return nil, errors.New("dialer cannot be nil")
	}

	baseInterval := cfg.BaseInterval
	if baseInterval <= 0 {
		baseInterval = DefaultBaseInterval
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Client{
		dialer:       cfg.Dialer,
		baseInterval: baseInterval,
		maxAttempts:  maxAttempts,
		dialTimeout:  dialTimeout,
		logger:       logger,
		state:        StateDisconnected,
		handlers:     make(map[models.EventType][]Handler),
	}, nil
}

func newRetryBackoff(base time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = base * 32
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Connect opens the channel. The first dial happens synchronously;
// failures hand over to the backoff machinery instead of returning.
func (c *Client) Connect(ctx context.Context, sessionID, participantID string) error {
	c.mu.Lock()
	if c.state != StateDisconnected && c.state != StateFailed {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}

	c.gen++
	gen := c.gen
	c.state = StateConnecting
	c.sessionID = sessionID
	c.participantID = participantID
	c.attempts = 0
	c.retry = newRetryBackoff(c.baseInterval)
	c.mu.Unlock()

	c.dial(ctx, gen)
	return nil
}

func (c *Client) dial(ctx context.Context, gen int) {
	c.mu.Lock()
	sessionID, participantID := c.sessionID, c.participantID
	c.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	conn, err := c.dialer.Dial(dialCtx, sessionID, participantID)
	cancel()

	c.mu.Lock()
	if gen != c.gen || c.state != StateConnecting {
		c.mu.Unlock()
		// A Disconnect won the race; discard the late connection
		if err == nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"session_id": sessionID,
			"attempt":    c.attempts,
		}).WithError(err).Warn("transport dial failed")
		c.scheduleRetryLocked(gen)
		return
	}

	c.conn = conn
	c.state = StateConnected
	c.attempts = 0
	c.retry.Reset()
	notify := c.connHandlersSnapshotLocked()
	c.mu.Unlock()

	go c.readLoop(conn, gen)

	for _, handler := range notify {
		handler(true)
	}
}

// scheduleRetryLocked is called with the mutex held after a dial
// failure or an unexpected drop; it releases the mutex.
func (c *Client) scheduleRetryLocked(gen int) {
	if c.attempts >= c.maxAttempts {
		// Terminal: no further timers, so the false notification
		// cannot repeat
		c.state = StateFailed
		c.conn = nil
		sessionID := c.sessionID
		notify := c.connHandlersSnapshotLocked()
		c.mu.Unlock()

		c.logger.WithField("session_id", sessionID).Error("transport reconnect budget exhausted")
		for _, handler := range notify {
			handler(false)
		}
		return
	}

	c.attempts++
	c.state = StateReconnecting
	delay := c.retry.NextBackOff()
	c.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		if gen != c.gen || c.state != StateReconnecting {
			c.mu.Unlock()
			return
		}
		c.state = StateConnecting
		c.mu.Unlock()
		c.dial(context.Background(), gen)
	})
	c.mu.Unlock()
}

func (c *Client) readLoop(conn Conn, gen int) {
	for {
		envelope, err := conn.ReadEnvelope()
		if err != nil {
			c.mu.Lock()
			if gen != c.gen || c.state != StateConnected {
				// Explicit disconnect closed the conn under us
				c.mu.Unlock()
				return
			}
			c.logger.WithField("session_id", c.sessionID).WithError(err).Warn("transport channel dropped")
			c.conn = nil
			c.scheduleRetryLocked(gen)
			return
		}

		c.dispatch(envelope)
	}
}

func (c *Client) dispatch(envelope *models.Envelope) {
	c.mu.Lock()
	handlers := make([]Handler, len(c.handlers[envelope.Type]))
	copy(handlers, c.handlers[envelope.Type])
	c.mu.Unlock()

	for _, handler := range handlers {
		handler(envelope)
	}
}

// Send transmits an envelope, or silently drops it when not connected
func (c *Client) Send(envelope *models.Envelope) {
	c.mu.Lock()
	if c.state != StateConnected || c.conn == nil {
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.mu.Unlock()

	if err := conn.WriteEnvelope(envelope); err != nil {
		// The read loop surfaces the dead channel; just record the loss
		c.logger.WithFields(logrus.Fields{
			"session_id": envelope.SessionID,
			"type":       envelope.Type,
		}).WithError(err).Warn("transport send failed")
	}
}

// Disconnect closes the channel and cancels any pending reconnect
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	wasConnected := c.state == StateConnected
	conn := c.conn
	c.conn = nil
	c.state = StateDisconnected
	c.attempts = 0
	notify := c.connHandlersSnapshotLocked()
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	if wasConnected {
		for _, handler := range notify {
			handler(false)
		}
	}
}

// On registers a handler for an inbound event type
func (c *Client) On(eventType models.EventType, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[eventType] = append(c.handlers[eventType], handler)
}

// OnConnectionChanged registers a connectivity handler
func (c *Client) OnConnectionChanged(handler func(connected bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connHandlers = append(c.connHandlers, handler)
}

// State reports the current connection state
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) connHandlersSnapshotLocked() []func(bool) {
	notify := make([]func(bool), len(c.connHandlers))
	copy(notify, c.connHandlers)
	return notify
}
