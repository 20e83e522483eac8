package presence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/kngcl/codebattle2-sub001/internal/common/clock"
	"github.com/kngcl/codebattle2-sub001/internal/models"
	"github.com/kngcl/codebattle2-sub001/internal/transport"
)

const testTTL = 50 * time.Millisecond

type TrackerTestSuite struct {
	suite.Suite
	broker *transport.Broker
	ctx    context.Context
}

func (s *TrackerTestSuite) SetupTest() {
	s.broker = transport.NewBroker()
	s.ctx = context.Background()
}

func TestTrackerTestSuite(t *testing.T) {
	suite.Run(t, new(TrackerTestSuite))
}

func (s *TrackerTestSuite) newTracker(participantID string) (*Tracker, *transport.Inmem) {
	s.T().Helper()

	tr := s.broker.NewTransport()
	s.Require().NoError(tr.Connect(s.ctx, "session-1", participantID))

	tracker, err := New(&Config{
		SessionID:     "session-1",
		ParticipantID: participantID,
		Transport:     tr,
		Clock:         &clock.DefaultClock{},
		TTL:           testTTL,
	})
	s.Require().NoError(err)
	s.T().Cleanup(tracker.Stop)

	return tracker, tr
}

func (s *TrackerTestSuite) TestPublish_ReachesPeers() {
	alice, _ := s.newTracker("alice")
	_, bobTransport := s.newTracker("bob")

	var received []*models.PresenceUpdate
	bobTransport.On(models.EventTypePresence, func(envelope *models.Envelope) {
		update, err := envelope.DecodePresence()
		s.Require().NoError(err)
		received = append(received, update)
	})

	_, err := alice.Publish(s.ctx, &PublishInput{Line: 5, Column: 10})
	s.Require().NoError(err)

	s.Require().Len(received, 1)
	s.Equal("alice", received[0].ParticipantID)
	s.Equal(5, received[0].Line)
	s.Equal(10, received[0].Column)
	s.True(received[0].ExpiresAt.After(received[0].Timestamp))
}

func (s *TrackerTestSuite) TestReceive_ExpiresAfterTTL() {
	tracker, _ := s.newTracker("u1")

	var expired []string
	var mu sync.Mutex
	tracker.OnExpire(func(participantID string) {
		mu.Lock()
		defer mu.Unlock()
		expired = append(expired, participantID)
	})

	now := time.Now()
	tracker.Receive(&models.PresenceUpdate{
		ParticipantID: "u2",
		SessionID:     "session-1",
		Line:          5,
		Column:        10,
		Timestamp:     now,
		ExpiresAt:     now.Add(testTTL),
	})

	s.Require().Len(tracker.Snapshot(), 1)

	s.Require().Eventually(func() bool {
		return len(tracker.Snapshot()) == 0
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	s.Equal([]string{"u2"}, expired)
}

func (s *TrackerTestSuite) TestReceive_RefreshResetsTimer() {
	tracker, _ := s.newTracker("u1")

	send := func() {
		now := time.Now()
		tracker.Receive(&models.PresenceUpdate{
			ParticipantID: "u2",
			SessionID:     "session-1",
			Timestamp:     now,
			ExpiresAt:     now.Add(testTTL),
		})
	}

	send()
	// Refresh at over half the TTL; the entry must survive past the
	// original deadline
	time.Sleep(30 * time.Millisecond)
	send()
	time.Sleep(30 * time.Millisecond)

	s.Len(tracker.Snapshot(), 1)

	s.Require().Eventually(func() bool {
		return len(tracker.Snapshot()) == 0
	}, time.Second, 5*time.Millisecond)
}

func (s *TrackerTestSuite) TestReceive_NotifiesSubscribers() {
	tracker, _ := s.newTracker("u1")

	var seen []*models.PresenceUpdate
	tracker.OnUpdate(func(update *models.PresenceUpdate) {
		seen = append(seen, update)
	})

	now := time.Now()
	tracker.Receive(&models.PresenceUpdate{
		ParticipantID: "u2",
		Line:          3,
		Timestamp:     now,
		ExpiresAt:     now.Add(testTTL),
	})

	s.Require().Len(seen, 1)
	s.Equal(3, seen[0].Line)
}

func (s *TrackerTestSuite) TestStop_DropsEntriesAndIgnoresLateUpdates() {
	tracker, _ := s.newTracker("u1")

	now := time.Now()
	update := &models.PresenceUpdate{
		ParticipantID: "u2",
		Timestamp:     now,
		ExpiresAt:     now.Add(testTTL),
	}
	tracker.Receive(update)
	s.Require().Len(tracker.Snapshot(), 1)

	tracker.Stop()
	s.Empty(tracker.Snapshot())

	tracker.Receive(update)
	s.Empty(tracker.Snapshot())
}
