// Package engine composes the session service, presence tracker and
// chat relay behind the single surface an editor integration talks to.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kngcl/codebattle2-sub001/internal/common/clock"
	"github.com/kngcl/codebattle2-sub001/internal/common/uuid"
	"github.com/kngcl/codebattle2-sub001/internal/differ"
	"github.com/kngcl/codebattle2-sub001/internal/models"
	chatsvc "github.com/kngcl/codebattle2-sub001/internal/services/chat"
	presencesvc "github.com/kngcl/codebattle2-sub001/internal/services/presence"
	sessionsvc "github.com/kngcl/codebattle2-sub001/internal/services/session"
	"github.com/kngcl/codebattle2-sub001/internal/transport"
)

// EngineError represents errors raised by the facade itself
type EngineError string

func (e EngineError) Error() string {
	return string(e)
}

const (
	// ErrNoActiveSession indicates an operation that needs a joined
	// session was called without one
	ErrNoActiveSession = EngineError("no active session")

	// ErrAlreadyInSession indicates a join was attempted while a
	// session is still active
	ErrAlreadyInSession = EngineError("already in a session, leave it first")
)

// activeSession is the engine's local view of the joined session
type activeSession struct {
	sessionID     string
	participantID string
	displayName   string
	document      string
	presence      *presencesvc.Tracker
	chat          *chatsvc.Relay
}

// Engine is the client facade. One engine serves one local participant
// and at most one session at a time.
type Engine struct {
	sessions  sessionsvc.Service
	transport transport.Transport
	clock     clock.Clock
	uuid      uuid.UUID
	ttl       time.Duration
	logger    *logrus.Logger

	// editMu serializes local edits; it is never taken by transport
	// handlers so synchronous transports cannot deadlock two engines
	editMu sync.Mutex

	mu     sync.Mutex
	active *activeSession

	patchHandlers      []func(patch *models.Patch)
	presenceHandlers   []func(update *models.PresenceUpdate)
	expiredHandlers    []func(participantID string)
	chatHandlers       []func(message *models.ChatMessage)
	joinHandlers       []func(roster *models.RosterPayload)
	leaveHandlers      []func(roster *models.RosterPayload)
	connectionHandlers []func(connected bool)
}

// New creates an engine and wires it to the transport's event stream
func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		return nil, EngineError("config cannot be nil")
	}
	if cfg.SessionService == nil {
		return nil, EngineError("session service cannot be nil")
	}
	if cfg.Transport == nil {
		return nil, EngineError("transport cannot be nil")
	}
	if cfg.Clock == nil {
		return nil, EngineError("clock cannot be nil")
	}
	if cfg.UUIDGenerator == nil {
		return nil, EngineError("UUID generator cannot be nil")
	}

	ttl := cfg.PresenceTTL
	if ttl <= 0 {
		ttl = models.PresenceTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	e := &Engine{
		sessions:  cfg.SessionService,
		transport: cfg.Transport,
		clock:     cfg.Clock,
		uuid:      cfg.UUIDGenerator,
		ttl:       ttl,
		logger:    logger,
	}

	e.transport.On(models.EventTypePatch, e.handlePatch)
	e.transport.On(models.EventTypePresence, e.handlePresence)
	e.transport.On(models.EventTypeChat, e.handleChat)
	e.transport.On(models.EventTypeJoin, e.handleJoin)
	e.transport.On(models.EventTypeLeave, e.handleLeave)
	e.transport.OnConnectionChanged(e.notifyConnection)

	return e, nil
}

// CreateSession creates a session and joins the caller as its owner
func (e *Engine) CreateSession(ctx context.Context, input *CreateSessionInput) (*models.Session, error) {
	if input == nil {
		return nil, EngineError("input cannot be nil")
	}
	if e.session() != nil {
		return nil, ErrAlreadyInSession
	}

	output, err := e.sessions.CreateSession(ctx, &sessionsvc.CreateSessionInput{
		ChallengeID: input.ChallengeID,
		OwnerID:     input.OwnerID,
		OwnerName:   input.DisplayName,
		IsPublic:    input.IsPublic,
	})
	if err != nil {
		return nil, err
	}

	if err := e.attach(output.Session, input.OwnerID, input.DisplayName); err != nil {
		return nil, err
	}
	return output.Session, nil
}

// JoinSession joins an existing session and returns its snapshot,
// document included, so the caller starts consistent
func (e *Engine) JoinSession(ctx context.Context, input *JoinSessionInput) (*models.Session, error) {
	if input == nil {
		return nil, EngineError("input cannot be nil")
	}
	if e.session() != nil {
		return nil, ErrAlreadyInSession
	}

	output, err := e.sessions.JoinSession(ctx, &sessionsvc.JoinSessionInput{
		SessionID:     input.SessionID,
		ParticipantID: input.ParticipantID,
		DisplayName:   input.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	if err := e.attach(output.Session, input.ParticipantID, input.DisplayName); err != nil {
		return nil, err
	}
	return output.Session, nil
}

// attach builds the per-session presence tracker and chat relay and
// installs the local session state
func (e *Engine) attach(session *models.Session, participantID, displayName string) error {
	tracker, err := presencesvc.New(&presencesvc.Config{
		SessionID:     session.ID,
		ParticipantID: participantID,
		Transport:     e.transport,
		Clock:         e.clock,
		TTL:           e.ttl,
		Logger:        e.logger,
	})
	if err != nil {
		return err
	}
	tracker.OnUpdate(e.notifyPresence)
	tracker.OnExpire(e.notifyExpired)

	relay, err := chatsvc.New(&chatsvc.Config{
		SessionID:     session.ID,
		ParticipantID: participantID,
		DisplayName:   displayName,
		Transport:     e.transport,
		Clock:         e.clock,
		UUIDGenerator: e.uuid,
		Logger:        e.logger,
	})
	if err != nil {
		return err
	}
	relay.OnMessage(e.notifyChat)

	e.mu.Lock()
	e.active = &activeSession{
		sessionID:     session.ID,
		participantID: participantID,
		displayName:   displayName,
		document:      session.Document,
		presence:      tracker,
		chat:          relay,
	}
	e.mu.Unlock()
	return nil
}

// LeaveSession marks the local participant inactive, disconnects and
// drops all local session state
func (e *Engine) LeaveSession(ctx context.Context) error {
	e.mu.Lock()
	active := e.active
	e.active = nil
	e.mu.Unlock()

	if active == nil {
		return ErrNoActiveSession
	}

	active.presence.Stop()

	_, err := e.sessions.LeaveSession(ctx, &sessionsvc.LeaveSessionInput{
		SessionID:     active.sessionID,
		ParticipantID: active.participantID,
	})
	return err
}

// ApplyLocalEdit diffs the new text against the tracked document and
// sends the resulting patch. Returns nil when the text is unchanged.
func (e *Engine) ApplyLocalEdit(ctx context.Context, newText string) (*models.Patch, error) {
	e.editMu.Lock()
	defer e.editMu.Unlock()

	e.mu.Lock()
	active := e.active
	var document string
	if active != nil {
		document = active.document
	}
	e.mu.Unlock()

	if active == nil {
		return nil, ErrNoActiveSession
	}

	patch, changed := differ.Diff(document, newText)
	if !changed {
		return nil, nil
	}

	output, err := e.sessions.SendPatch(ctx, &sessionsvc.SendPatchInput{
		SessionID: active.sessionID,
		AuthorID:  active.participantID,
		Patch:     patch,
	})
	if err != nil {
		return nil, err
	}
	if !output.Applied {
		return nil, nil
	}

	e.mu.Lock()
	if e.active == active {
		active.document = output.Document
	}
	e.mu.Unlock()

	return output.Patch, nil
}

// SendPresence broadcasts the local cursor position
func (e *Engine) SendPresence(ctx context.Context, input *PresenceInput) error {
	if input == nil {
		return EngineError("input cannot be nil")
	}

	active := e.session()
	if active == nil {
		return ErrNoActiveSession
	}

	_, err := active.presence.Publish(ctx, &presencesvc.PublishInput{
		Line:      input.Line,
		Column:    input.Column,
		Selection: input.Selection,
	})
	return err
}

// SendChatMessage broadcasts a chat message and appends it to the log
func (e *Engine) SendChatMessage(ctx context.Context, body string) (*models.ChatMessage, error) {
	active := e.session()
	if active == nil {
		return nil, ErrNoActiveSession
	}

	output, err := active.chat.Send(ctx, &chatsvc.SendInput{Body: body})
	if err != nil {
		return nil, err
	}
	return output.Message, nil
}

// ChatMessages returns the ordered chat log
func (e *Engine) ChatMessages() []*models.ChatMessage {
	if active := e.session(); active != nil {
		return active.chat.Messages()
	}
	return nil
}

// UnreadChatCount returns the number of unread messages from others
func (e *Engine) UnreadChatCount() int {
	if active := e.session(); active != nil {
		return active.chat.UnreadCount()
	}
	return 0
}

// MarkChatRead moves the read mark past the current log
func (e *Engine) MarkChatRead() {
	if active := e.session(); active != nil {
		active.chat.MarkRead()
	}
}

// PresenceSnapshot returns the currently visible remote cursors
func (e *Engine) PresenceSnapshot() []*models.PresenceUpdate {
	if active := e.session(); active != nil {
		return active.presence.Snapshot()
	}
	return nil
}

// Document returns the locally tracked document text
func (e *Engine) Document() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return ""
	}
	return e.active.document
}

// Resync refetches the authoritative session snapshot and replaces the
// tracked document. The recovery path for divergence after dropped
// patches.
func (e *Engine) Resync(ctx context.Context) (*models.Session, error) {
	active := e.session()
	if active == nil {
		return nil, ErrNoActiveSession
	}

	output, err := e.sessions.GetSession(ctx, &sessionsvc.GetSessionInput{
		SessionID: active.sessionID,
	})
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.active == active {
		active.document = output.Session.Document
	}
	e.mu.Unlock()

	return output.Session, nil
}

// FindChallengeSession returns the open session for a challenge, so a
// joiner can land in an existing session instead of creating one
func (e *Engine) FindChallengeSession(ctx context.Context, challengeID string) (*models.Session, error) {
	output, err := e.sessions.FindSessionByChallenge(ctx, &sessionsvc.FindSessionByChallengeInput{
		ChallengeID: challengeID,
	})
	if err != nil {
		return nil, err
	}
	return output.Session, nil
}

// ListPublicSessions returns all joinable public sessions
func (e *Engine) ListPublicSessions(ctx context.Context) ([]*models.Session, error) {
	output, err := e.sessions.ListPublicSessions(ctx, &sessionsvc.ListPublicSessionsInput{})
	if err != nil {
		return nil, err
	}
	return output.Sessions, nil
}

// ArchiveSession closes the current session. Owner only.
func (e *Engine) ArchiveSession(ctx context.Context) error {
	active := e.session()
	if active == nil {
		return ErrNoActiveSession
	}

	_, err := e.sessions.ArchiveSession(ctx, &sessionsvc.ArchiveSessionInput{
		SessionID:   active.sessionID,
		RequesterID: active.participantID,
	})
	return err
}

// ConnectionState reports the transport's current state
func (e *Engine) ConnectionState() transport.State {
	return e.transport.State()
}

// session returns the active session handle, or nil
func (e *Engine) session() *activeSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// SessionID returns the active session's ID, or empty
func (e *Engine) SessionID() string {
	if active := e.session(); active != nil {
		return active.sessionID
	}
	return ""
}

// OnPatch registers a handler for applied remote patches
func (e *Engine) OnPatch(handler func(patch *models.Patch)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.patchHandlers = append(e.patchHandlers, handler)
}

// OnPresence registers a handler for remote cursor updates
func (e *Engine) OnPresence(handler func(update *models.PresenceUpdate)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.presenceHandlers = append(e.presenceHandlers, handler)
}

// OnPresenceExpired registers a handler for cursors that timed out
func (e *Engine) OnPresenceExpired(handler func(participantID string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.expiredHandlers = append(e.expiredHandlers, handler)
}

// OnChat registers a handler for received chat messages
func (e *Engine) OnChat(handler func(message *models.ChatMessage)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chatHandlers = append(e.chatHandlers, handler)
}

// OnParticipantJoined registers a handler for roster additions
func (e *Engine) OnParticipantJoined(handler func(roster *models.RosterPayload)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.joinHandlers = append(e.joinHandlers, handler)
}

// OnParticipantLeft registers a handler for roster departures
func (e *Engine) OnParticipantLeft(handler func(roster *models.RosterPayload)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.leaveHandlers = append(e.leaveHandlers, handler)
}

// OnConnectionChanged registers a handler for connectivity transitions
func (e *Engine) OnConnectionChanged(handler func(connected bool)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connectionHandlers = append(e.connectionHandlers, handler)
}

// handlePatch applies a remote patch and notifies subscribers. Own
// patches echoing back are never re-applied.
func (e *Engine) handlePatch(envelope *models.Envelope) {
	active := e.session()
	if active == nil || envelope.SessionID != active.sessionID {
		return
	}

	patch, err := envelope.DecodePatch()
	if err != nil {
		e.logger.WithError(err).Warn("dropping undecodable patch envelope")
		return
	}
	if patch.AuthorID == active.participantID {
		return
	}

	output, err := e.sessions.ApplyRemotePatch(context.Background(), &sessionsvc.ApplyRemotePatchInput{
		Patch: patch,
	})
	if err != nil {
		e.logger.WithError(err).WithField("patch_id", patch.ID).Warn("failed to apply remote patch")
		return
	}
	if !output.Applied {
		return
	}

	e.mu.Lock()
	if e.active == active {
		active.document = output.Document
	}
	handlers := make([]func(*models.Patch), len(e.patchHandlers))
	copy(handlers, e.patchHandlers)
	e.mu.Unlock()

	for _, handler := range handlers {
		handler(patch)
	}
}

func (e *Engine) handlePresence(envelope *models.Envelope) {
	active := e.session()
	if active == nil || envelope.SessionID != active.sessionID {
		return
	}

	update, err := envelope.DecodePresence()
	if err != nil {
		e.logger.WithError(err).Warn("dropping undecodable presence envelope")
		return
	}
	if update.ParticipantID == active.participantID {
		return
	}

	active.presence.Receive(update)
}

func (e *Engine) handleChat(envelope *models.Envelope) {
	active := e.session()
	if active == nil || envelope.SessionID != active.sessionID {
		return
	}

	message, err := envelope.DecodeChat()
	if err != nil {
		e.logger.WithError(err).Warn("dropping undecodable chat envelope")
		return
	}
	if message.AuthorID == active.participantID {
		return
	}

	active.chat.Receive(message)
}

// handleJoin merges a peer's join into the local roster, then
// notifies subscribers.
func (e *Engine) handleJoin(envelope *models.Envelope) {
	roster := e.decodeRoster(envelope)
	if roster == nil {
		return
	}

	_, err := e.sessions.ApplyRemoteJoin(context.Background(), &sessionsvc.ApplyRemoteJoinInput{
		SessionID: envelope.SessionID,
		Roster:    roster,
	})
	if err != nil {
		e.logger.WithError(err).WithField("participant_id", roster.ParticipantID).Warn("failed to merge remote join")
	}

	e.notifyRoster(roster, func(e *Engine) []func(*models.RosterPayload) {
		return e.joinHandlers
	})
}

// handleLeave marks the departed peer inactive in the local roster,
// retaining the record, then notifies subscribers.
func (e *Engine) handleLeave(envelope *models.Envelope) {
	roster := e.decodeRoster(envelope)
	if roster == nil {
		return
	}

	_, err := e.sessions.ApplyRemoteLeave(context.Background(), &sessionsvc.ApplyRemoteLeaveInput{
		SessionID: envelope.SessionID,
		Roster:    roster,
	})
	if err != nil {
		e.logger.WithError(err).WithField("participant_id", roster.ParticipantID).Warn("failed to merge remote leave")
	}

	e.notifyRoster(roster, func(e *Engine) []func(*models.RosterPayload) {
		return e.leaveHandlers
	})
}

// decodeRoster returns the roster payload for an envelope addressed to
// the active session, or nil when the envelope is stale, undecodable
// or the local participant's own echo.
func (e *Engine) decodeRoster(envelope *models.Envelope) *models.RosterPayload {
	active := e.session()
	if active == nil || envelope.SessionID != active.sessionID {
		return nil
	}

	roster, err := envelope.DecodeRoster()
	if err != nil {
		e.logger.WithError(err).Warn("dropping undecodable roster envelope")
		return nil
	}
	if roster.ParticipantID == active.participantID {
		return nil
	}
	return roster
}

func (e *Engine) notifyRoster(roster *models.RosterPayload, pick func(*Engine) []func(*models.RosterPayload)) {
	e.mu.Lock()
	registered := pick(e)
	handlers := make([]func(*models.RosterPayload), len(registered))
	copy(handlers, registered)
	e.mu.Unlock()

	for _, handler := range handlers {
		handler(roster)
	}
}

func (e *Engine) notifyPresence(update *models.PresenceUpdate) {
	e.mu.Lock()
	handlers := make([]func(*models.PresenceUpdate), len(e.presenceHandlers))
	copy(handlers, e.presenceHandlers)
	e.mu.Unlock()

	for _, handler := range handlers {
		handler(update)
	}
}

func (e *Engine) notifyExpired(participantID string) {
	e.mu.Lock()
	handlers := make([]func(string), len(e.expiredHandlers))
	copy(handlers, e.expiredHandlers)
	e.mu.Unlock()

	for _, handler := range handlers {
		handler(participantID)
	}
}

func (e *Engine) notifyChat(message *models.ChatMessage) {
	e.mu.Lock()
	handlers := make([]func(*models.ChatMessage), len(e.chatHandlers))
	copy(handlers, e.chatHandlers)
	e.mu.Unlock()

	for _, handler := range handlers {
		handler(message)
	}
}

func (e *Engine) notifyConnection(connected bool) {
	e.mu.Lock()
	handlers := make([]func(bool), len(e.connectionHandlers))
	copy(handlers, e.connectionHandlers)
	e.mu.Unlock()

	for _, handler := range handlers {
		handler(connected)
	}
}
