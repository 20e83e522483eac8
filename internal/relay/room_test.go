package relay

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/kngcl/codebattle2-sub001/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type RoomTestSuite struct {
	suite.Suite
	room *Room
}

func (s *RoomTestSuite) SetupTest() {
	s.room = NewRoom("session-1", testLogger())
}

func TestRoomTestSuite(t *testing.T) {
	suite.Run(t, new(RoomTestSuite))
}

func (s *RoomTestSuite) patchEnvelope(sessionID string, patch *models.Patch) *models.Envelope {
	s.T().Helper()
	envelope, err := models.NewEnvelope(models.EventTypePatch, sessionID, patch.AuthorID, patch.Timestamp, patch)
	s.Require().NoError(err)
	return envelope
}

func (s *RoomTestSuite) TestBroadcastExcludesSender() {
	alice := s.room.Join("alice")
	bob := s.room.Join("bob")

	envelope, err := models.NewEnvelope(models.EventTypeChat, "session-1", "alice", time.Now(), &models.ChatMessage{
		ID:       "m1",
		AuthorID: "alice",
		Body:     "hi",
	})
	s.Require().NoError(err)

	s.room.Broadcast(envelope, "alice")

	select {
	case got := <-bob.Events:
		s.Equal(models.EventTypeChat, got.Type)
	default:
		s.FailNow("bob received nothing")
	}

	select {
	case <-alice.Events:
		s.FailNow("sender received its own event")
	default:
	}
}

func (s *RoomTestSuite) TestApplyPatchAdvancesDocument() {
	s.room.SetDocument("helo")

	s.room.ApplyPatch(s.patchEnvelope("session-1", &models.Patch{
		ID:        "p1",
		SessionID: "session-1",
		AuthorID:  "alice",
		Kind:      models.PatchKindInsert,
		Position:  3,
		Payload:   "l",
		Timestamp: time.Now(),
	}))

	s.Equal("hello", s.room.Document())
}

func (s *RoomTestSuite) TestApplyPatchOutOfBoundsIsDropped() {
	s.room.SetDocument("hi")

	s.room.ApplyPatch(s.patchEnvelope("session-1", &models.Patch{
		ID:        "p1",
		SessionID: "session-1",
		AuthorID:  "alice",
		Kind:      models.PatchKindInsert,
		Position:  40,
		Payload:   "x",
		Timestamp: time.Now(),
	}))

	s.Equal("hi", s.room.Document())
}

func (s *RoomTestSuite) TestLeaveClosesChannel() {
	alice := s.room.Join("alice")
	s.Require().False(s.room.Empty())

	s.room.Leave(alice)

	_, open := <-alice.Events
	s.False(open)
	s.True(s.room.Empty())

	// A second leave is a no-op
	s.room.Leave(alice)
}

func (s *RoomTestSuite) TestFullQueueDropsEvent() {
	bob := s.room.Join("bob")

	envelope, err := models.NewEnvelope(models.EventTypePresence, "session-1", "alice", time.Now(), &models.PresenceUpdate{
		ParticipantID: "alice",
	})
	s.Require().NoError(err)

	for i := 0; i < memberBuffer+5; i++ {
		s.room.Broadcast(envelope, "alice")
	}

	s.Len(bob.Events, memberBuffer)
}
