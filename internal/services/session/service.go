package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/kngcl/codebattle2-sub001/internal/differ"
	"github.com/kngcl/codebattle2-sub001/internal/models"
	"github.com/kngcl/codebattle2-sub001/internal/palette"
	sessionRepo "github.com/kngcl/codebattle2-sub001/internal/repositories/session"
	"github.com/kngcl/codebattle2-sub001/internal/transport"
)

// liveSession is the in-memory authoritative record for one session.
// All mutations happen under its mutex, so concurrent patches from
// different participants serialize instead of losing updates. Sessions
// are independent and proceed in parallel.
type liveSession struct {
	mu      sync.Mutex
	session *models.Session
}

// service implements the Service interface
type service struct {
	config    *Config
	transport transport.Transport
	logger    *logrus.Logger

	// registry of live sessions keyed by session ID
	mu   sync.Mutex
	live map[string]*liveSession
}

// New creates a new session service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.SessionRepo == nil {
		return nil, ErrNilRepository
	}
	if cfg.Transport == nil {
		return nil, ErrNilTransport
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	if cfg.MaxParticipants <= 0 {
		cfg.MaxParticipants = models.DefaultMaxParticipants
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &service{
		config:    cfg,
		transport: cfg.Transport,
		logger:    logger,
		live:      make(map[string]*liveSession),
	}, nil
}

// CreateSession allocates a new session and immediately joins the owner
func (s *service) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if input == nil || input.OwnerID == "" {
		return nil, errors.New("input and owner ID cannot be empty")
	}

	sessionID := s.config.UUIDGenerator.NewUUID()
	now := s.config.Clock.Now()

	session := &models.Session{
		ID:              sessionID,
		ChallengeID:     input.ChallengeID,
		OwnerID:         input.OwnerID,
		Participants:    []*models.Participant{},
		Document:        "",
		Language:        models.DefaultLanguage,
		IsPublic:        input.IsPublic,
		MaxParticipants: s.config.MaxParticipants,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.config.SessionRepo.SaveSession(ctx, &sessionRepo.SaveSessionInput{
		Session: session,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.mu.Lock()
	s.live[sessionID] = &liveSession{session: session}
	s.mu.Unlock()

	joined, err := s.JoinSession(ctx, &JoinSessionInput{
		SessionID:     sessionID,
		ParticipantID: input.OwnerID,
		DisplayName:   input.OwnerName,
	})
	if err != nil {
		return nil, err
	}

	return &CreateSessionOutput{
		SessionID: sessionID,
		Session:   joined.Session,
	}, nil
}

// JoinSession connects the transport, adds or reactivates the
// participant, broadcasts the join, and returns the full session
// snapshot so a late joiner starts consistent.
func (s *service) JoinSession(ctx context.Context, input *JoinSessionInput) (*JoinSessionOutput, error) {
	if input == nil || input.SessionID == "" || input.ParticipantID == "" {
		return nil, errors.New("input, session ID and participant ID cannot be empty")
	}

	live, err := s.getLive(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	err = s.transport.Connect(ctx, input.SessionID, input.ParticipantID)
	if err != nil && !errors.Is(err, transport.ErrAlreadyConnected) {
		return nil, err
	}

	live.mu.Lock()
	session := live.session

	if session.Archived {
		live.mu.Unlock()
		return nil, ErrSessionArchived
	}

	now := s.config.Clock.Now()
	participant := session.Participant(input.ParticipantID)
	if participant != nil {
		// Rejoin: the retained record is reactivated, keeping its color
		participant.IsActive = true
		participant.LastSeenAt = now
		if input.DisplayName != "" {
			participant.DisplayName = input.DisplayName
		}
	} else {
		if len(session.Participants) >= session.MaxParticipants {
			live.mu.Unlock()
			return nil, ErrCapacityExceeded
		}

		inUse := make([]int, 0, len(session.Participants))
		for _, p := range session.Participants {
			if p.IsActive {
				inUse = append(inUse, p.ColorIndex)
			}
		}

		participant = &models.Participant{
			ID:          input.ParticipantID,
			DisplayName: input.DisplayName,
			ColorIndex:  palette.Pick(inUse),
			IsActive:    true,
			JoinedAt:    now,
			LastSeenAt:  now,
		}
		session.Participants = append(session.Participants, participant)
	}

	session.UpdatedAt = now
	colorIndex := participant.ColorIndex
	displayName := participant.DisplayName
	snapshot := copySession(session)
	live.mu.Unlock()

	err = s.config.SessionRepo.SaveSession(ctx, &sessionRepo.SaveSessionInput{
		Session: snapshot,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.broadcast(models.EventTypeJoin, input.SessionID, input.ParticipantID, &models.RosterPayload{
		ParticipantID: input.ParticipantID,
		DisplayName:   displayName,
		ColorIndex:    colorIndex,
		Color:         palette.Color(colorIndex),
	})

	return &JoinSessionOutput{
		Session: snapshot,
	}, nil
}

// LeaveSession marks the participant inactive, broadcasts the leave and
// disconnects the transport. The roster record is retained.
func (s *service) LeaveSession(ctx context.Context, input *LeaveSessionInput) (*LeaveSessionOutput, error) {
	if input == nil || input.SessionID == "" || input.ParticipantID == "" {
		return nil, errors.New("input, session ID and participant ID cannot be empty")
	}

	live, err := s.getLive(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	live.mu.Lock()
	session := live.session

	participant := session.Participant(input.ParticipantID)
	if participant == nil {
		live.mu.Unlock()
		return nil, ErrParticipantNotInSession
	}

	now := s.config.Clock.Now()
	participant.IsActive = false
	participant.LastSeenAt = now
	session.UpdatedAt = now
	displayName := participant.DisplayName
	snapshot := copySession(session)
	live.mu.Unlock()

	err = s.config.SessionRepo.SaveSession(ctx, &sessionRepo.SaveSessionInput{
		Session: snapshot,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	// Broadcast before tearing the channel down
	s.broadcast(models.EventTypeLeave, input.SessionID, input.ParticipantID, &models.RosterPayload{
		ParticipantID: input.ParticipantID,
		DisplayName:   displayName,
	})

	s.transport.Disconnect()

	return &LeaveSessionOutput{
		Success: true,
	}, nil
}

// SendPatch applies a local edit and broadcasts it. Invalid patches are
// fail-soft: logged and dropped so the session stays usable.
func (s *service) SendPatch(ctx context.Context, input *SendPatchInput) (*SendPatchOutput, error) {
	if input == nil || input.Patch == nil || input.SessionID == "" || input.AuthorID == "" {
		return nil, errors.New("input, patch, session ID and author ID cannot be empty")
	}

	live, err := s.getLive(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	now := s.config.Clock.Now()
	patch := &models.Patch{
		ID:        s.config.UUIDGenerator.NewUUID(),
		SessionID: input.SessionID,
		AuthorID:  input.AuthorID,
		Kind:      input.Patch.Kind,
		Position:  input.Patch.Position,
		Payload:   input.Patch.Payload,
		Timestamp: now,
	}

	live.mu.Lock()
	session := live.session

	if session.Participant(input.AuthorID) == nil {
		live.mu.Unlock()
		return nil, ErrParticipantNotInSession
	}

	newText, applyErr := differ.Apply(session.Document, patch)
	if applyErr != nil {
		document := session.Document
		live.mu.Unlock()
		s.logDroppedPatch(patch, applyErr)
		return &SendPatchOutput{Applied: false, Document: document}, nil
	}

	session.Document = newText
	session.UpdatedAt = now
	snapshot := copySession(session)
	live.mu.Unlock()

	err = s.config.SessionRepo.SaveSession(ctx, &sessionRepo.SaveSessionInput{
		Session: snapshot,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.broadcast(models.EventTypePatch, input.SessionID, input.AuthorID, patch)

	return &SendPatchOutput{
		Applied:  true,
		Document: newText,
		Patch:    patch,
	}, nil
}

// ApplyRemotePatch applies a patch received from a peer. Authorship
// filtering happens at the facade; by the time a patch reaches here it
// is known to come from another participant.
func (s *service) ApplyRemotePatch(ctx context.Context, input *ApplyRemotePatchInput) (*ApplyRemotePatchOutput, error) {
	if input == nil || input.Patch == nil || input.Patch.SessionID == "" {
		return nil, errors.New("input and patch session ID cannot be empty")
	}

	live, err := s.getLive(ctx, input.Patch.SessionID)
	if err != nil {
		return nil, err
	}

	live.mu.Lock()
	session := live.session

	newText, applyErr := differ.Apply(session.Document, input.Patch)
	if applyErr != nil {
		document := session.Document
		live.mu.Unlock()
		s.logDroppedPatch(input.Patch, applyErr)
		return &ApplyRemotePatchOutput{Applied: false, Document: document}, nil
	}

	session.Document = newText
	session.UpdatedAt = s.config.Clock.Now()
	snapshot := copySession(session)
	live.mu.Unlock()

	err = s.config.SessionRepo.SaveSession(ctx, &sessionRepo.SaveSessionInput{
		Session: snapshot,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &ApplyRemotePatchOutput{
		Applied:  true,
		Document: newText,
	}, nil
}

// ApplyRemoteJoin merges a join received from a peer into the local
// roster, keeping rosters converged across instances that share a
// repository. Capacity was already enforced by the instance that
// admitted the participant, so the merge accepts the entry as-is and
// never re-broadcasts.
func (s *service) ApplyRemoteJoin(ctx context.Context, input *ApplyRemoteJoinInput) (*ApplyRemoteJoinOutput, error) {
	if input == nil || input.SessionID == "" || input.Roster == nil || input.Roster.ParticipantID == "" {
		return nil, errors.New("input, session ID and roster cannot be empty")
	}

	live, err := s.getLive(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	now := s.config.Clock.Now()
	live.mu.Lock()
	session := live.session

	participant := session.Participant(input.Roster.ParticipantID)
	if participant != nil {
		participant.IsActive = true
		participant.LastSeenAt = now
		if input.Roster.DisplayName != "" {
			participant.DisplayName = input.Roster.DisplayName
		}
	} else {
		session.Participants = append(session.Participants, &models.Participant{
			ID:          input.Roster.ParticipantID,
			DisplayName: input.Roster.DisplayName,
			ColorIndex:  input.Roster.ColorIndex,
			IsActive:    true,
			JoinedAt:    now,
			LastSeenAt:  now,
		})
	}
	session.UpdatedAt = now
	snapshot := copySession(session)
	live.mu.Unlock()

	err = s.config.SessionRepo.SaveSession(ctx, &sessionRepo.SaveSessionInput{
		Session: snapshot,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &ApplyRemoteJoinOutput{
		Session: snapshot,
	}, nil
}

// ApplyRemoteLeave marks a departed peer inactive in the local roster.
// The record is retained so a rejoin keeps its color. An unknown
// participant is a no-op rather than an error; the leave may outrun
// the join when a peer connects and drops quickly.
func (s *service) ApplyRemoteLeave(ctx context.Context, input *ApplyRemoteLeaveInput) (*ApplyRemoteLeaveOutput, error) {
	if input == nil || input.SessionID == "" || input.Roster == nil || input.Roster.ParticipantID == "" {
		return nil, errors.New("input, session ID and roster cannot be empty")
	}

	live, err := s.getLive(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	live.mu.Lock()
	session := live.session

	participant := session.Participant(input.Roster.ParticipantID)
	if participant == nil {
		snapshot := copySession(session)
		live.mu.Unlock()
		return &ApplyRemoteLeaveOutput{Session: snapshot}, nil
	}

	now := s.config.Clock.Now()
	participant.IsActive = false
	participant.LastSeenAt = now
	session.UpdatedAt = now
	snapshot := copySession(session)
	live.mu.Unlock()

	err = s.config.SessionRepo.SaveSession(ctx, &sessionRepo.SaveSessionInput{
		Session: snapshot,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &ApplyRemoteLeaveOutput{
		Session: snapshot,
	}, nil
}

// GetSession returns a snapshot of a session
func (s *service) GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	live, err := s.getLive(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	live.mu.Lock()
	snapshot := copySession(live.session)
	live.mu.Unlock()

	return &GetSessionOutput{
		Session: snapshot,
	}, nil
}

// FindSessionByChallenge returns the open session for a challenge, so
// a second player lands in the existing session instead of a new one
func (s *service) FindSessionByChallenge(ctx context.Context, input *FindSessionByChallengeInput) (*FindSessionByChallengeOutput, error) {
	if input == nil || input.ChallengeID == "" {
		return nil, errors.New("input and challenge ID cannot be empty")
	}

	session, err := s.config.SessionRepo.GetSessionByChallenge(ctx, &sessionRepo.GetSessionByChallengeInput{
		ChallengeID: input.ChallengeID,
	})
	if err != nil {
		if errors.Is(err, sessionRepo.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to look up challenge session: %w", err)
	}

	return &FindSessionByChallengeOutput{
		Session: session,
	}, nil
}

// ListPublicSessions returns all public, unarchived sessions
func (s *service) ListPublicSessions(ctx context.Context, _ *ListPublicSessionsInput) (*ListPublicSessionsOutput, error) {
	listed, err := s.config.SessionRepo.ListPublicSessions(ctx, &sessionRepo.ListPublicSessionsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list public sessions: %w", err)
	}

	return &ListPublicSessionsOutput{
		Sessions: listed.Sessions,
	}, nil
}

// ArchiveSession closes a session permanently. Only the owner may do it.
func (s *service) ArchiveSession(ctx context.Context, input *ArchiveSessionInput) (*ArchiveSessionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	live, err := s.getLive(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	live.mu.Lock()
	session := live.session

	if session.OwnerID != input.RequesterID {
		live.mu.Unlock()
		return nil, ErrNotSessionOwner
	}

	session.Archived = true
	session.UpdatedAt = s.config.Clock.Now()
	snapshot := copySession(session)
	live.mu.Unlock()

	err = s.config.SessionRepo.SaveSession(ctx, &sessionRepo.SaveSessionInput{
		Session: snapshot,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.mu.Lock()
	delete(s.live, input.SessionID)
	s.mu.Unlock()

	return &ArchiveSessionOutput{
		Success: true,
	}, nil
}

// getLive returns the live record for a session, loading it from the
// repository on first touch.
func (s *service) getLive(ctx context.Context, sessionID string) (*liveSession, error) {
	s.mu.Lock()
	if live, ok := s.live[sessionID]; ok {
		s.mu.Unlock()
		return live, nil
	}
	s.mu.Unlock()

	session, err := s.config.SessionRepo.GetSession(ctx, &sessionRepo.GetSessionInput{
		SessionID: sessionID,
	})
	if err != nil {
		if errors.Is(err, sessionRepo.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if live, ok := s.live[sessionID]; ok {
		// Lost the load race; the registered record wins
		return live, nil
	}
	live := &liveSession{session: session}
	s.live[sessionID] = live
	return live, nil
}

func (s *service) broadcast(eventType models.EventType, sessionID, senderID string, payload interface{}) {
	envelope, err := models.NewEnvelope(eventType, sessionID, senderID, s.config.Clock.Now(), payload)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"session_id": sessionID,
			"type":       eventType,
		}).WithError(err).Warn("failed to build envelope")
		return
	}
	s.transport.Send(envelope)
}

func (s *service) logDroppedPatch(patch *models.Patch, err error) {
	s.logger.WithFields(logrus.Fields{
		"session_id": patch.SessionID,
		"author_id":  patch.AuthorID,
		"kind":       patch.Kind,
		"position":   patch.Position,
	}).WithError(err).Warn("dropped invalid patch")
}

// copySession returns a deep snapshot callers can hold without racing
// the live record.
func copySession(session *models.Session) *models.Session {
	snapshot := *session
	snapshot.Participants = make([]*models.Participant, len(session.Participants))
	for i, p := range session.Participants {
		participant := *p
		snapshot.Participants[i] = &participant
	}
	return &snapshot
}
