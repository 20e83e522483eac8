package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/kngcl/codebattle2-sub001/internal/models"
	"github.com/kngcl/codebattle2-sub001/internal/transport"
)

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time { return c.now }

type stubUUID struct {
	next int
}

func (u *stubUUID) NewUUID() string {
	u.next++
	return fmt.Sprintf("msg-%d", u.next)
}

var testNow = time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)

type ChatRelayTestSuite struct {
	suite.Suite
	broker *transport.Broker
	clock  *stubClock
	ctx    context.Context
}

func (s *ChatRelayTestSuite) SetupTest() {
	s.broker = transport.NewBroker()
	s.clock = &stubClock{now: testNow}
	s.ctx = context.Background()
}

func TestChatRelayTestSuite(t *testing.T) {
	suite.Run(t, new(ChatRelayTestSuite))
}

func (s *ChatRelayTestSuite) newRelay(participantID string) (*Relay, *transport.Inmem) {
	s.T().Helper()

	tr := s.broker.NewTransport()
	s.Require().NoError(tr.Connect(s.ctx, "session-1", participantID))

	relay, err := New(&Config{
		SessionID:     "session-1",
		ParticipantID: participantID,
		DisplayName:   participantID,
		Transport:     tr,
		Clock:         s.clock,
		UUIDGenerator: &stubUUID{},
	})
	s.Require().NoError(err)

	return relay, tr
}

func (s *ChatRelayTestSuite) TestSend_ReachesPeers() {
	alice, _ := s.newRelay("alice")
	_, bobTransport := s.newRelay("bob")

	var received []*models.ChatMessage
	bobTransport.On(models.EventTypeChat, func(envelope *models.Envelope) {
		message, err := envelope.DecodeChat()
		s.Require().NoError(err)
		received = append(received, message)
	})

	output, err := alice.Send(s.ctx, &SendInput{Body: "hello"})
	s.Require().NoError(err)

	s.Equal(models.ChatKindText, output.Message.Kind)
	s.Equal("alice", output.Message.AuthorID)

	s.Require().Len(received, 1)
	s.Equal("hello", received[0].Body)
}

func (s *ChatRelayTestSuite) TestSend_StampsAreMonotonic() {
	alice, _ := s.newRelay("alice")

	// Frozen clock: successive sends must still move forward
	first, err := alice.Send(s.ctx, &SendInput{Body: "one"})
	s.Require().NoError(err)
	second, err := alice.Send(s.ctx, &SendInput{Body: "two"})
	s.Require().NoError(err)

	s.True(second.Message.Timestamp.After(first.Message.Timestamp))
}

func (s *ChatRelayTestSuite) TestReceive_OrdersRegardlessOfArrival() {
	alice, _ := s.newRelay("alice")

	remote := func(id string, offset time.Duration) *models.ChatMessage {
		return &models.ChatMessage{
			ID:        id,
			SessionID: "session-1",
			AuthorID:  "bob",
			Body:      id,
			Kind:      models.ChatKindText,
			Timestamp: testNow.Add(offset),
		}
	}

	// Interleaved arrival: late message first
	alice.Receive(remote("late", 300*time.Millisecond))
	alice.Receive(remote("early", 100*time.Millisecond))
	alice.Receive(remote("middle", 200*time.Millisecond))

	log := alice.Messages()
	s.Require().Len(log, 3)
	for i := 1; i < len(log); i++ {
		s.False(log[i].Timestamp.Before(log[i-1].Timestamp),
			"log out of order at %d: %s before %s", i, log[i].ID, log[i-1].ID)
	}
	s.Equal("early", log[0].ID)
	s.Equal("late", log[2].ID)
}

func (s *ChatRelayTestSuite) TestReceive_EqualStampsKeepArrivalOrder() {
	alice, _ := s.newRelay("alice")

	for _, id := range []string{"a", "b", "c"} {
		alice.Receive(&models.ChatMessage{
			ID:        id,
			AuthorID:  "bob",
			Timestamp: testNow,
		})
	}

	log := alice.Messages()
	s.Require().Len(log, 3)
	s.Equal("a", log[0].ID)
	s.Equal("b", log[1].ID)
	s.Equal("c", log[2].ID)
}

func (s *ChatRelayTestSuite) TestUnreadCount() {
	alice, _ := s.newRelay("alice")

	// Own messages never count as unread
	_, err := alice.Send(s.ctx, &SendInput{Body: "mine"})
	s.Require().NoError(err)
	s.Zero(alice.UnreadCount())

	s.clock.now = testNow.Add(time.Second)
	alice.Receive(&models.ChatMessage{
		ID:        "remote-1",
		AuthorID:  "bob",
		Body:      "hi",
		Timestamp: s.clock.now,
	})
	s.clock.now = testNow.Add(2 * time.Second)
	alice.Receive(&models.ChatMessage{
		ID:        "remote-2",
		AuthorID:  "bob",
		Body:      "there",
		Timestamp: s.clock.now,
	})

	s.Equal(2, alice.UnreadCount())

	alice.MarkRead()
	s.Zero(alice.UnreadCount())

	s.clock.now = testNow.Add(3 * time.Second)
	alice.Receive(&models.ChatMessage{
		ID:        "remote-3",
		AuthorID:  "bob",
		Body:      "again",
		Timestamp: s.clock.now,
	})
	s.Equal(1, alice.UnreadCount())
}

func (s *ChatRelayTestSuite) TestReceive_NotifiesSubscribers() {
	alice, _ := s.newRelay("alice")

	var seen []string
	alice.OnMessage(func(message *models.ChatMessage) {
		seen = append(seen, message.Body)
	})

	alice.Receive(&models.ChatMessage{ID: "m1", AuthorID: "bob", Body: "hi", Timestamp: testNow})

	s.Equal([]string{"hi"}, seen)
}

func (s *ChatRelayTestSuite) TestSend_SystemKind() {
	alice, _ := s.newRelay("alice")

	output, err := alice.Send(s.ctx, &SendInput{
		Body: "bob joined the session",
		Kind: models.ChatKindSystem,
	})
	s.Require().NoError(err)
	s.Equal(models.ChatKindSystem, output.Message.Kind)
}
