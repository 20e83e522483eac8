package session

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/kngcl/codebattle2-sub001/internal/repositories/session Repository

import (
	"context"

	"github.com/kngcl/codebattle2-sub001/internal/models"
)

// Repository defines the interface for session data persistence
type Repository interface {
	// SaveSession persists a session
	SaveSession(ctx context.Context, input *SaveSessionInput) error

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, input *GetSessionInput) (*models.Session, error)

	// GetSessionByChallenge retrieves the most recent open session for a challenge
	GetSessionByChallenge(ctx context.Context, input *GetSessionByChallengeInput) (*models.Session, error)

	// DeleteSession removes a session
	DeleteSession(ctx context.Context, input *DeleteSessionInput) error

	// ListPublicSessions retrieves all public, unarchived sessions
	ListPublicSessions(ctx context.Context, input *ListPublicSessionsInput) (*ListPublicSessionsOutput, error)
}
