package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kngcl/codebattle2-sub001/internal/models"
)

const (
	// Key prefixes for Redis
	sessionKeyPrefix   = "collab:session:"
	challengeKeyPrefix = "collab:challenge:"
	publicSessionsKey  = "collab:public_sessions"
)

// ErrSessionNotFound is returned when a session is not found
var ErrSessionNotFound = errors.New("session not found")

// Config holds configuration for the Redis session repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis.
// Each session is stored as one JSON object keyed by session ID.
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed session repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// SaveSession persists a session to Redis
func (r *redisRepository) SaveSession(ctx context.Context, input *SaveSessionInput) error {
	if input == nil || input.Session == nil {
		return errors.New("input and session cannot be nil")
	}

	sessionJSON, err := json.Marshal(input.Session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := r.client.Pipeline()

	sessionKey := fmt.Sprintf("%s%s", sessionKeyPrefix, input.Session.ID)
	pipe.Set(ctx, sessionKey, sessionJSON, 0)

	// Map the challenge to its open session so joiners can find it
	if input.Session.ChallengeID != "" {
		challengeKey := fmt.Sprintf("%s%s", challengeKeyPrefix, input.Session.ChallengeID)
		if input.Session.Archived {
			pipe.Del(ctx, challengeKey)
		} else {
			pipe.Set(ctx, challengeKey, input.Session.ID, 0)
		}
	}

	// Keep the public sessions index in sync
	if input.Session.IsPublic && !input.Session.Archived {
		pipe.SAdd(ctx, publicSessionsKey, input.Session.ID)
	} else {
		pipe.SRem(ctx, publicSessionsKey, input.Session.ID)
	}

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID from Redis
func (r *redisRepository) GetSession(ctx context.Context, input *GetSessionInput) (*models.Session, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	sessionKey := fmt.Sprintf("%s%s", sessionKeyPrefix, input.SessionID)
	sessionJSON, err := r.client.Get(ctx, sessionKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(sessionJSON), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// GetSessionByChallenge retrieves the open session for a challenge
func (r *redisRepository) GetSessionByChallenge(ctx context.Context, input *GetSessionByChallengeInput) (*models.Session, error) {
	if input == nil || input.ChallengeID == "" {
		return nil, errors.New("input and challenge ID cannot be empty")
	}

	challengeKey := fmt.Sprintf("%s%s", challengeKeyPrefix, input.ChallengeID)
	sessionID, err := r.client.Get(ctx, challengeKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get challenge mapping: %w", err)
	}

	return r.GetSession(ctx, &GetSessionInput{SessionID: sessionID})
}

// DeleteSession removes a session from Redis
func (r *redisRepository) DeleteSession(ctx context.Context, input *DeleteSessionInput) error {
	if input == nil || input.SessionID == "" {
		return errors.New("input and session ID cannot be empty")
	}

	session, err := r.GetSession(ctx, &GetSessionInput{SessionID: input.SessionID})
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, fmt.Sprintf("%s%s", sessionKeyPrefix, input.SessionID))
	pipe.SRem(ctx, publicSessionsKey, input.SessionID)
	if session.ChallengeID != "" {
		pipe.Del(ctx, fmt.Sprintf("%s%s", challengeKeyPrefix, session.ChallengeID))
	}

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// ListPublicSessions retrieves all public, unarchived sessions from Redis
func (r *redisRepository) ListPublicSessions(ctx context.Context, input *ListPublicSessionsInput) (*ListPublicSessionsOutput, error) {
	sessionIDs, err := r.client.SMembers(ctx, publicSessionsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list public sessions: %w", err)
	}

	sessions := make([]*models.Session, 0, len(sessionIDs))
	for _, sessionID := range sessionIDs {
		session, err := r.GetSession(ctx, &GetSessionInput{SessionID: sessionID})
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				// Index entry outlived its session; skip it
				continue
			}
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return &ListPublicSessionsOutput{
		Sessions: sessions,
	}, nil
}
