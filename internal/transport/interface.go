package transport

//go:generate mockgen -package=mocks -destination=mocks/mock_transport.go github.com/kngcl/codebattle2-sub001/internal/transport Transport

import (
	"context"

	"github.com/kngcl/codebattle2-sub001/internal/models"
)

// Handler receives inbound envelopes of a single event type
type Handler func(envelope *models.Envelope)

// Transport is the persistent bidirectional channel to the relay. It
// owns the connect/reconnect state machine and demultiplexes inbound
// events by type.
type Transport interface {
	// Connect opens the channel for a participant in a session. Dial
	// failures are retried internally with backoff; they are surfaced
	// through OnConnectionChanged, not as an error here.
	Connect(ctx context.Context, sessionID, participantID string) error

	// Disconnect closes the channel and cancels any pending reconnect.
	// A disconnected transport never resurrects on its own.
	Disconnect()

	// Send transmits an envelope. Outside the Connected state the
	// envelope is silently dropped, not queued.
	Send(envelope *models.Envelope)

	// On registers a handler for an inbound event type
	On(eventType models.EventType, handler Handler)

	// OnConnectionChanged registers a handler for connectivity edges
	OnConnectionChanged(handler func(connected bool))

	// State reports the current connection state
	State() State
}
