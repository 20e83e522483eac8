package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/kngcl/codebattle2-sub001/internal/models"
)

var (
	sessionsBucket   = []byte("sessions")
	challengesBucket = []byte("challenges")
)

// BoltConfig holds configuration for the bbolt session repository
type BoltConfig struct {
	// DB is an open bbolt database
	DB *bolt.DB
}

// boltRepository implements the Repository interface on a local bbolt
// file. Sessions survive process restarts without an external server.
type boltRepository struct {
	db *bolt.DB
}

// NewBolt creates a new bbolt-backed session repository
func NewBolt(cfg *BoltConfig) (*boltRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.DB == nil {
		return nil, errors.New("bolt database cannot be nil")
	}

	err := cfg.DB.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(sessionsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(challengesBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &boltRepository{
		db: cfg.DB,
	}, nil
}

// SaveSession persists a session
func (r *boltRepository) SaveSession(_ context.Context, input *SaveSessionInput) error {
	if input == nil || input.Session == nil {
		return errors.New("input and session cannot be nil")
	}

	sessionJSON, err := json.Marshal(input.Session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(sessionsBucket).Put([]byte(input.Session.ID), sessionJSON); err != nil {
			return err
		}

		if input.Session.ChallengeID == "" {
			return nil
		}

		challenges := tx.Bucket(challengesBucket)
		if input.Session.Archived {
			return challenges.Delete([]byte(input.Session.ChallengeID))
		}
		return challenges.Put([]byte(input.Session.ChallengeID), []byte(input.Session.ID))
	})
}

// GetSession retrieves a session by ID
func (r *boltRepository) GetSession(_ context.Context, input *GetSessionInput) (*models.Session, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	var session *models.Session
	err := r.db.View(func(tx *bolt.Tx) error {
		sessionJSON := tx.Bucket(sessionsBucket).Get([]byte(input.SessionID))
		if sessionJSON == nil {
			return ErrSessionNotFound
		}

		session = &models.Session{}
		return json.Unmarshal(sessionJSON, session)
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// GetSessionByChallenge retrieves the open session for a challenge
func (r *boltRepository) GetSessionByChallenge(ctx context.Context, input *GetSessionByChallengeInput) (*models.Session, error) {
	if input == nil || input.ChallengeID == "" {
		return nil, errors.New("input and challenge ID cannot be empty")
	}

	var sessionID string
	err := r.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(challengesBucket).Get([]byte(input.ChallengeID))
		if id == nil {
			return ErrSessionNotFound
		}
		sessionID = string(id)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetSession(ctx, &GetSessionInput{SessionID: sessionID})
}

// DeleteSession removes a session
func (r *boltRepository) DeleteSession(ctx context.Context, input *DeleteSessionInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}

	session, err := r.GetSession(ctx, &GetSessionInput{SessionID: input.SessionID})
	if err != nil {
		return err
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(sessionsBucket).Delete([]byte(input.SessionID)); err != nil {
			return err
		}
		if session.ChallengeID == "" {
			return nil
		}
		return tx.Bucket(challengesBucket).Delete([]byte(session.ChallengeID))
	})
}

// ListPublicSessions retrieves all public, unarchived sessions
func (r *boltRepository) ListPublicSessions(_ context.Context, _ *ListPublicSessionsInput) (*ListPublicSessionsOutput, error) {
	sessions := make([]*models.Session, 0)

	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).ForEach(func(_, sessionJSON []byte) error {
			var session models.Session
			if err := json.Unmarshal(sessionJSON, &session); err != nil {
				return err
			}
			if session.IsPublic && !session.Archived {
				sessions = append(sessions, &session)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list public sessions: %w", err)
	}

	return &ListPublicSessionsOutput{
		Sessions: sessions,
	}, nil
}
