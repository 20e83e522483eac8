package transport

import (
	"context"
	"sync"

	"github.com/kngcl/codebattle2-sub001/internal/models"
)

// Broker links in-process transports by session ID. It stands in for
// the relay in tests and single-process deployments: delivery is
// synchronous and deterministic.
type Broker struct {
	mu    sync.Mutex
	rooms map[string]map[*Inmem]bool
}

// NewBroker creates an empty broker
func NewBroker() *Broker {
	return &Broker{
		rooms: make(map[string]map[*Inmem]bool),
	}
}

// NewTransport creates a transport attached to this broker
func (b *Broker) NewTransport() *Inmem {
	return &Inmem{
		broker:   b,
		state:    StateDisconnected,
		handlers: make(map[models.EventType][]Handler),
	}
}

func (b *Broker) join(sessionID string, t *Inmem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	room, ok := b.rooms[sessionID]
	if !ok {
		room = make(map[*Inmem]bool)
		b.rooms[sessionID] = room
	}
	room[t] = true
}

func (b *Broker) leave(sessionID string, t *Inmem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room, ok := b.rooms[sessionID]; ok {
		delete(room, t)
		if len(room) == 0 {
			delete(b.rooms, sessionID)
		}
	}
}

func (b *Broker) broadcast(from *Inmem, envelope *models.Envelope) {
	b.mu.Lock()
	peers := make([]*Inmem, 0)
	for peer := range b.rooms[envelope.SessionID] {
		if peer != from {
			peers = append(peers, peer)
		}
	}
	b.mu.Unlock()

	for _, peer := range peers {
		peer.deliver(envelope)
	}
}

// Inmem is the deterministic, synchronous in-process transport. Connect
// succeeds immediately (unless scripted to fail), Send delivers to room
// peers on the caller's goroutine, and there is no retry machinery.
type Inmem struct {
	broker *Broker

	mu           sync.Mutex
	state        State
	sessionID    string
	failConnects int

	handlers     map[models.EventType][]Handler
	connHandlers []func(connected bool)
}

// FailNextConnects scripts the next n Connect calls to fail
func (t *Inmem) FailNextConnects(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failConnects = n
}

// Connect attaches to the broker room for the session
func (t *Inmem) Connect(_ context.Context, sessionID, _ string) error {
	t.mu.Lock()
	if t.state == StateConnected {
		t.mu.Unlock()
		return ErrAlreadyConnected
	}

	if t.failConnects > 0 {
		t.failConnects--
		t.state = StateFailed
		notify := t.connHandlersSnapshotLocked()
		t.mu.Unlock()
		for _, handler := range notify {
			handler(false)
		}
		return nil
	}

	t.state = StateConnected
	t.sessionID = sessionID
	notify := t.connHandlersSnapshotLocked()
	t.mu.Unlock()

	t.broker.join(sessionID, t)
	for _, handler := range notify {
		handler(true)
	}
	return nil
}

// Disconnect detaches from the broker room
func (t *Inmem) Disconnect() {
	t.mu.Lock()
	wasConnected := t.state == StateConnected
	sessionID := t.sessionID
	t.state = StateDisconnected
	notify := t.connHandlersSnapshotLocked()
	t.mu.Unlock()

	if !wasConnected {
		return
	}

	t.broker.leave(sessionID, t)
	for _, handler := range notify {
		handler(false)
	}
}

// Send broadcasts to room peers; dropped when not connected
func (t *Inmem) Send(envelope *models.Envelope) {
	t.mu.Lock()
	connected := t.state == StateConnected
	t.mu.Unlock()

	if !connected {
		return
	}
	t.broker.broadcast(t, envelope)
}

func (t *Inmem) deliver(envelope *models.Envelope) {
	t.mu.Lock()
	handlers := make([]Handler, len(t.handlers[envelope.Type]))
	copy(handlers, t.handlers[envelope.Type])
	t.mu.Unlock()

	for _, handler := range handlers {
		handler(envelope)
	}
}

// On registers a handler for an inbound event type
func (t *Inmem) On(eventType models.EventType, handler Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[eventType] = append(t.handlers[eventType], handler)
}

// OnConnectionChanged registers a connectivity handler
func (t *Inmem) OnConnectionChanged(handler func(connected bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connHandlers = append(t.connHandlers, handler)
}

// State reports the current connection state
func (t *Inmem) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Inmem) connHandlersSnapshotLocked() []func(bool) {
	notify := make([]func(bool), len(t.connHandlers))
	copy(notify, t.connHandlers)
	return notify
}
