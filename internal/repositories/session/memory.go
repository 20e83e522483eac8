package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/kngcl/codebattle2-sub001/internal/models"
)

// memoryRepository implements the Repository interface with an
// in-process map. It is the default store for single-instance use and
// for tests that do not need persistence.
type memoryRepository struct {
	mu       sync.RWMutex
	sessions map[string][]byte
	// challenge ID -> open session ID
	challenges map[string]string
}

// NewMemory creates a new in-memory session repository
func NewMemory() *memoryRepository {
	return &memoryRepository{
		sessions:   make(map[string][]byte),
		challenges: make(map[string]string),
	}
}

// SaveSession stores a snapshot of the session
func (r *memoryRepository) SaveSession(_ context.Context, input *SaveSessionInput) error {
	if input == nil || input.Session == nil {
		return errors.New("input and session cannot be nil")
	}

	// Snapshot via JSON so callers cannot mutate stored state
	sessionJSON, err := json.Marshal(input.Session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[input.Session.ID] = sessionJSON
	if input.Session.ChallengeID != "" {
		if input.Session.Archived {
			delete(r.challenges, input.Session.ChallengeID)
		} else {
			r.challenges[input.Session.ChallengeID] = input.Session.ID
		}
	}

	return nil
}

// GetSession retrieves a session by ID
func (r *memoryRepository) GetSession(_ context.Context, input *GetSessionInput) (*models.Session, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	r.mu.RLock()
	sessionJSON, ok := r.sessions[input.SessionID]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	var session models.Session
	if err := json.Unmarshal(sessionJSON, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// GetSessionByChallenge retrieves the open session for a challenge
func (r *memoryRepository) GetSessionByChallenge(ctx context.Context, input *GetSessionByChallengeInput) (*models.Session, error) {
	if input == nil || input.ChallengeID == "" {
		return nil, errors.New("input and challenge ID cannot be empty")
	}

	r.mu.RLock()
	sessionID, ok := r.challenges[input.ChallengeID]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	return r.GetSession(ctx, &GetSessionInput{SessionID: sessionID})
}

// DeleteSession removes a session
func (r *memoryRepository) DeleteSession(ctx context.Context, input *DeleteSessionInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}

	session, err := r.GetSession(ctx, &GetSessionInput{SessionID: input.SessionID})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, input.SessionID)
	if session.ChallengeID != "" {
		delete(r.challenges, session.ChallengeID)
	}

	return nil
}

// ListPublicSessions retrieves all public, unarchived sessions
func (r *memoryRepository) ListPublicSessions(_ context.Context, _ *ListPublicSessionsInput) (*ListPublicSessionsOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*models.Session, 0)
	for _, sessionJSON := range r.sessions {
		var session models.Session
		if err := json.Unmarshal(sessionJSON, &session); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}
		if session.IsPublic && !session.Archived {
			sessions = append(sessions, &session)
		}
	}

	return &ListPublicSessionsOutput{
		Sessions: sessions,
	}, nil
}
