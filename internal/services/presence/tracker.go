// Package presence tracks participant cursor positions with a fixed
// TTL: an entry that is not refreshed in time is removed from the
// presence set, not merely flagged stale.
package presence

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kngcl/codebattle2-sub001/internal/models"
	"github.com/kngcl/codebattle2-sub001/internal/transport"
)

type entry struct {
	update *models.PresenceUpdate
	timer  *time.Timer
}

// Tracker broadcasts the local cursor and expires remote ones. Each
// remote participant has an independent TTL timer that resets on every
// received update.
type Tracker struct {
	sessionID     string
	participantID string
	transport     transport.Transport
	clock         interface{ Now() time.Time }
	ttl           time.Duration
	logger        *logrus.Logger

	mu             sync.Mutex
	entries        map[string]*entry
	updateHandlers []func(update *models.PresenceUpdate)
	expireHandlers []func(participantID string)
	stopped        bool
}

// New creates a presence tracker for one session
func New(cfg *Config) (*Tracker, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Transport == nil {
		return nil, errors.New("transport cannot be nil")
	}
	if cfg.Clock == nil {
		return nil, errors.New("clock cannot be nil")
	}
	if cfg.SessionID == "" || cfg.ParticipantID == "" {
		return nil, errors.New("session ID and participant ID cannot be empty")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = models.PresenceTTL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Tracker{
		sessionID:     cfg.SessionID,
		participantID: cfg.ParticipantID,
		transport:     cfg.Transport,
		clock:         cfg.Clock,
		ttl:           ttl,
		logger:        logger,
		entries:       make(map[string]*entry),
	}, nil
}

// Publish broadcasts the local cursor position
func (t *Tracker) Publish(_ context.Context, input *PublishInput) (*PublishOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	now := t.clock.Now()
	update := &models.PresenceUpdate{
		ParticipantID: t.participantID,
		SessionID:     t.sessionID,
		Line:          input.Line,
		Column:        input.Column,
		Selection:     input.Selection,
		Timestamp:     now,
		ExpiresAt:     now.Add(t.ttl),
	}

	envelope, err := models.NewEnvelope(models.EventTypePresence, t.sessionID, t.participantID, now, update)
	if err != nil {
		return nil, err
	}
	t.transport.Send(envelope)

	return &PublishOutput{
		Update: update,
	}, nil
}

// Receive stores a remote participant's update and arms its TTL timer
func (t *Tracker) Receive(update *models.PresenceUpdate) {
	if update == nil || update.ParticipantID == "" {
		return
	}

	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}

	if existing, ok := t.entries[update.ParticipantID]; ok {
		existing.timer.Stop()
	}

	participantID := update.ParticipantID
	t.entries[participantID] = &entry{
		update: update,
		timer:  time.AfterFunc(t.ttl, func() { t.expire(participantID) }),
	}

	handlers := make([]func(*models.PresenceUpdate), len(t.updateHandlers))
	copy(handlers, t.updateHandlers)
	t.mu.Unlock()

	for _, handler := range handlers {
		handler(update)
	}
}

func (t *Tracker) expire(participantID string) {
	t.mu.Lock()
	if _, ok := t.entries[participantID]; !ok {
		t.mu.Unlock()
		return
	}
	delete(t.entries, participantID)

	handlers := make([]func(string), len(t.expireHandlers))
	copy(handlers, t.expireHandlers)
	t.mu.Unlock()

	t.logger.WithFields(logrus.Fields{
		"session_id":     t.sessionID,
		"participant_id": participantID,
	}).Debug("presence entry expired")

	for _, handler := range handlers {
		handler(participantID)
	}
}

// Snapshot returns the currently visible remote cursors
func (t *Tracker) Snapshot() []*models.PresenceUpdate {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	updates := make([]*models.PresenceUpdate, 0, len(t.entries))
	for _, e := range t.entries {
		// Timers normally remove entries; the bound guards reads that
		// race an expiry
		if e.update.ExpiresAt.After(now) {
			updates = append(updates, e.update)
		}
	}
	return updates
}

// OnUpdate registers a handler for received updates
func (t *Tracker) OnUpdate(handler func(update *models.PresenceUpdate)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.updateHandlers = append(t.updateHandlers, handler)
}

// OnExpire registers a handler for expired entries
func (t *Tracker) OnExpire(handler func(participantID string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expireHandlers = append(t.expireHandlers, handler)
}

// Stop cancels all timers and drops all entries
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	for participantID, e := range t.entries {
		e.timer.Stop()
		delete(t.entries, participantID)
	}
}
