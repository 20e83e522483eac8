package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/kngcl/codebattle2-sub001/internal/models"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	testNow time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo

	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) newTestSession() *models.Session {
	return &models.Session{
		ID:          "test-session-id",
		ChallengeID: "test-challenge-id",
		OwnerID:     "test-owner-id",
		Participants: []*models.Participant{
			{
				ID:          "test-owner-id",
				DisplayName: "Test Owner",
				ColorIndex:  0,
				IsActive:    true,
				JoinedAt:    s.testNow,
				LastSeenAt:  s.testNow,
			},
		},
		Document:        "package main",
		Language:        "go",
		IsPublic:        true,
		MaxParticipants: models.DefaultMaxParticipants,
		CreatedAt:       s.testNow,
		UpdatedAt:       s.testNow,
	}
}

func (s *RedisRepositoryTestSuite) TestSaveAndGetSession() {
	session := s.newTestSession()

	err := s.repo.SaveSession(context.Background(), &SaveSessionInput{
		Session: session,
	})
	s.Require().NoError(err)

	retrieved, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)
	s.Require().NotNil(retrieved)

	s.Equal("test-session-id", retrieved.ID)
	s.Equal("test-challenge-id", retrieved.ChallengeID)
	s.Equal("test-owner-id", retrieved.OwnerID)
	s.Equal("package main", retrieved.Document)
	s.Equal("go", retrieved.Language)
	s.Equal(models.DefaultMaxParticipants, retrieved.MaxParticipants)
	s.Len(retrieved.Participants, 1)
	s.Equal("test-owner-id", retrieved.Participants[0].ID)
	s.True(retrieved.Participants[0].IsActive)
	s.Equal(s.testNow.Unix(), retrieved.CreatedAt.Unix())
	s.Equal(s.testNow.Unix(), retrieved.UpdatedAt.Unix())
}

func (s *RedisRepositoryTestSuite) TestGetSession_NotFound() {
	_, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "missing-session-id",
	})
	s.Require().ErrorIs(err, ErrSessionNotFound)
}

func (s *RedisRepositoryTestSuite) TestGetSessionByChallenge() {
	session := s.newTestSession()

	err := s.repo.SaveSession(context.Background(), &SaveSessionInput{
		Session: session,
	})
	s.Require().NoError(err)

	retrieved, err := s.repo.GetSessionByChallenge(context.Background(), &GetSessionByChallengeInput{
		ChallengeID: "test-challenge-id",
	})
	s.Require().NoError(err)
	s.Equal("test-session-id", retrieved.ID)
}

func (s *RedisRepositoryTestSuite) TestArchivedSessionLeavesIndexes() {
	session := s.newTestSession()

	err := s.repo.SaveSession(context.Background(), &SaveSessionInput{
		Session: session,
	})
	s.Require().NoError(err)

	session.Archived = true
	err = s.repo.SaveSession(context.Background(), &SaveSessionInput{
		Session: session,
	})
	s.Require().NoError(err)

	// Archived sessions drop out of the challenge mapping and the
	// public index, but the record itself is retained
	_, err = s.repo.GetSessionByChallenge(context.Background(), &GetSessionByChallengeInput{
		ChallengeID: "test-challenge-id",
	})
	s.Require().ErrorIs(err, ErrSessionNotFound)

	listed, err := s.repo.ListPublicSessions(context.Background(), &ListPublicSessionsInput{})
	s.Require().NoError(err)
	s.Empty(listed.Sessions)

	retrieved, err := s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)
	s.True(retrieved.Archived)
}

func (s *RedisRepositoryTestSuite) TestListPublicSessions() {
	public := s.newTestSession()

	private := s.newTestSession()
	private.ID = "private-session-id"
	private.ChallengeID = "private-challenge-id"
	private.IsPublic = false

	s.Require().NoError(s.repo.SaveSession(context.Background(), &SaveSessionInput{Session: public}))
	s.Require().NoError(s.repo.SaveSession(context.Background(), &SaveSessionInput{Session: private}))

	listed, err := s.repo.ListPublicSessions(context.Background(), &ListPublicSessionsInput{})
	s.Require().NoError(err)
	s.Require().Len(listed.Sessions, 1)
	s.Equal("test-session-id", listed.Sessions[0].ID)
}

func (s *RedisRepositoryTestSuite) TestDeleteSession() {
	session := s.newTestSession()

	s.Require().NoError(s.repo.SaveSession(context.Background(), &SaveSessionInput{Session: session}))

	err := s.repo.DeleteSession(context.Background(), &DeleteSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().NoError(err)

	_, err = s.repo.GetSession(context.Background(), &GetSessionInput{
		SessionID: "test-session-id",
	})
	s.Require().ErrorIs(err, ErrSessionNotFound)

	_, err = s.repo.GetSessionByChallenge(context.Background(), &GetSessionByChallengeInput{
		ChallengeID: "test-challenge-id",
	})
	s.Require().ErrorIs(err, ErrSessionNotFound)
}
