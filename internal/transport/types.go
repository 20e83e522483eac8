package transport

import (
	"context"
	"errors"
	"time"

	"github.com/kngcl/codebattle2-sub001/internal/models"
)

// State is a connection state machine state
type State string

const (
	// StateDisconnected is the initial and post-leave state
	StateDisconnected State = "disconnected"

	// StateConnecting means a dial attempt is in flight
	StateConnecting State = "connecting"

	// StateConnected means the channel is open and sends are delivered
	StateConnected State = "connected"

	// StateReconnecting means a retry is scheduled after backoff
	StateReconnecting State = "reconnecting"

	// StateFailed is terminal: the retry budget is exhausted
	StateFailed State = "failed"
)

const (
	// DefaultBaseInterval is the first reconnect delay; each further
	// attempt doubles it
	DefaultBaseInterval = 1000 * time.Millisecond

	// DefaultMaxAttempts is the reconnect budget before Failed
	DefaultMaxAttempts = 5
)

var (
	// ErrAlreadyConnected is returned when Connect is called on a
	// transport that is not disconnected
	ErrAlreadyConnected = errors.New("transport already connected")

	// ErrConnectionFailed is the terminal handshake failure
	ErrConnectionFailed = errors.New("connection failed")
)

// Conn is one established channel to the relay
type Conn interface {
	// ReadEnvelope blocks for the next inbound envelope
	ReadEnvelope() (*models.Envelope, error)

	// WriteEnvelope transmits an envelope
	WriteEnvelope(envelope *models.Envelope) error

	// Close tears the channel down
	Close() error
}

// Dialer establishes connections for a client transport
type Dialer interface {
	Dial(ctx context.Context, sessionID, participantID string) (Conn, error)
}

// Config holds configuration for a client transport
type Config struct {
	// Dialer establishes the underlying channel
	Dialer Dialer

	// BaseInterval is the first reconnect delay (default 1s)
	BaseInterval time.Duration

	// MaxAttempts is the reconnect budget (default 5)
	MaxAttempts int

	// DialTimeout bounds each dial attempt (default 10s)
	DialTimeout time.Duration
}
