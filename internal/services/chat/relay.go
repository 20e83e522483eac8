// Package chat keeps a per-session append-only message log ordered by
// timestamp, with an unread counter relative to a caller-set read mark.
package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kngcl/codebattle2-sub001/internal/common/clock"
	"github.com/kngcl/codebattle2-sub001/internal/common/uuid"
	"github.com/kngcl/codebattle2-sub001/internal/models"
	"github.com/kngcl/codebattle2-sub001/internal/transport"
)

// Relay broadcasts chat messages and maintains the local ordered log
type Relay struct {
	sessionID     string
	participantID string
	displayName   string
	transport     transport.Transport
	clock         clock.Clock
	uuid          uuid.UUID
	logger        *logrus.Logger

	mu sync.Mutex
	// messages is kept sorted by timestamp; equal stamps keep arrival
	// order so the log is stable
	messages []*models.ChatMessage
	// lastStamp enforces monotonically non-decreasing outbound stamps
	lastStamp time.Time
	readMark  time.Time
	handlers  []func(message *models.ChatMessage)
}

// New creates a chat relay for one session
func New(cfg *Config) (*Relay, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Transport == nil {
		return nil, errors.New("transport cannot be nil")
	}
	if cfg.Clock == nil {
		return nil, errors.New("clock cannot be nil")
	}
	if cfg.UUIDGenerator == nil {
		return nil, errors.New("UUID generator cannot be nil")
	}
	if cfg.SessionID == "" || cfg.ParticipantID == "" {
		return nil, errors.New("session ID and participant ID cannot be empty")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Relay{
		sessionID:     cfg.SessionID,
		participantID: cfg.ParticipantID,
		displayName:   cfg.DisplayName,
		transport:     cfg.Transport,
		clock:         cfg.Clock,
		uuid:          cfg.UUIDGenerator,
		logger:        logger,
	}, nil
}

// Send broadcasts a message and appends it to the local log
func (r *Relay) Send(_ context.Context, input *SendInput) (*SendOutput, error) {
	if input == nil || input.Body == "" {
		return nil, errors.New("input and body cannot be empty")
	}

	kind := input.Kind
	if kind == "" {
		kind = models.ChatKindText
	}

	r.mu.Lock()
	stamp := r.clock.Now()
	if !stamp.After(r.lastStamp) {
		stamp = r.lastStamp.Add(time.Millisecond)
	}
	r.lastStamp = stamp

	message := &models.ChatMessage{
		ID:         r.uuid.NewUUID(),
		SessionID:  r.sessionID,
		AuthorID:   r.participantID,
		AuthorName: r.displayName,
		Body:       input.Body,
		Kind:       kind,
		Timestamp:  stamp,
	}
	r.insertLocked(message)
	r.mu.Unlock()

	envelope, err := models.NewEnvelope(models.EventTypeChat, r.sessionID, r.participantID, stamp, message)
	if err != nil {
		return nil, err
	}
	r.transport.Send(envelope)

	return &SendOutput{
		Message: message,
	}, nil
}

// Receive merges a remote message into the ordered log
func (r *Relay) Receive(message *models.ChatMessage) {
	if message == nil || message.ID == "" {
		return
	}

	r.mu.Lock()
	if message.Timestamp.After(r.lastStamp) {
		// Keep local stamps from falling behind remote ones
		r.lastStamp = message.Timestamp
	}
	r.insertLocked(message)

	handlers := make([]func(*models.ChatMessage), len(r.handlers))
	copy(handlers, r.handlers)
	r.mu.Unlock()

	for _, handler := range handlers {
		handler(message)
	}
}

// insertLocked keeps the log sorted by timestamp, preserving arrival
// order for equal stamps.
func (r *Relay) insertLocked(message *models.ChatMessage) {
	i := len(r.messages)
	for i > 0 && r.messages[i-1].Timestamp.After(message.Timestamp) {
		i--
	}
	r.messages = append(r.messages, nil)
	copy(r.messages[i+1:], r.messages[i:])
	r.messages[i] = message
}

// Messages returns the log in non-decreasing timestamp order
func (r *Relay) Messages() []*models.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := make([]*models.ChatMessage, len(r.messages))
	copy(log, r.messages)
	return log
}

// UnreadCount counts messages past the read mark authored by others
func (r *Relay) UnreadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, message := range r.messages {
		if message.Timestamp.After(r.readMark) && message.AuthorID != r.participantID {
			count++
		}
	}
	return count
}

// MarkRead moves the read mark past every message currently in the log
func (r *Relay) MarkRead() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.readMark = r.clock.Now()
	if n := len(r.messages); n > 0 {
		if last := r.messages[n-1].Timestamp; last.After(r.readMark) {
			r.readMark = last
		}
	}
}

// OnMessage registers a handler for received messages
func (r *Relay) OnMessage(handler func(message *models.ChatMessage)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, handler)
}
