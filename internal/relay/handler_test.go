package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/kngcl/codebattle2-sub001/internal/models"
	sessionrepo "github.com/kngcl/codebattle2-sub001/internal/repositories/session"
	"github.com/kngcl/codebattle2-sub001/internal/transport"
)

type HandlerTestSuite struct {
	suite.Suite
	httpURL string
	wsURL   string
	ctx     context.Context
}

func (s *HandlerTestSuite) SetupTest() {
	s.ctx = context.Background()
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

// startRelay spins up a hub plus handler on an httptest server and
// records its base URLs on the suite.
func (s *HandlerTestSuite) startRelay(repo sessionrepo.Repository) {
	s.T().Helper()

	hub, err := NewHub(&Config{SessionRepo: repo, Logger: testLogger()})
	s.Require().NoError(err)
	s.T().Cleanup(hub.Close)

	handler, err := NewHandler(&HandlerConfig{Hub: hub, Logger: testLogger()})
	s.Require().NoError(err)

	router := mux.NewRouter()
	handler.Register(router)

	server := httptest.NewServer(router)
	s.T().Cleanup(server.Close)

	s.httpURL = server.URL
	s.wsURL = "ws" + strings.TrimPrefix(server.URL, "http")
}

func (s *HandlerTestSuite) connectClient(sessionID, participantID string) *transport.Client {
	s.T().Helper()

	dialer, err := transport.NewWebsocketDialer(s.wsURL)
	s.Require().NoError(err)

	client, err := transport.NewClient(&transport.Config{Dialer: dialer}, testLogger())
	s.Require().NoError(err)
	s.Require().NoError(client.Connect(s.ctx, sessionID, participantID))
	s.T().Cleanup(client.Disconnect)

	return client
}

func (s *HandlerTestSuite) rosterEnvelope(eventType models.EventType, sessionID, participantID string) *models.Envelope {
	s.T().Helper()
	envelope, err := models.NewEnvelope(eventType, sessionID, participantID, time.Now(), &models.RosterPayload{
		ParticipantID: participantID,
		DisplayName:   participantID,
	})
	s.Require().NoError(err)
	return envelope
}

func (s *HandlerTestSuite) TestPatchReachesPeer() {
	s.startRelay(nil)

	alice := s.connectClient("session-1", "alice")
	bob := s.connectClient("session-1", "bob")

	var mu sync.Mutex
	var patches []*models.Patch
	bob.On(models.EventTypePatch, func(envelope *models.Envelope) {
		patch, err := envelope.DecodePatch()
		s.Require().NoError(err)
		mu.Lock()
		patches = append(patches, patch)
		mu.Unlock()
	})

	patch := &models.Patch{
		ID:        "p1",
		SessionID: "session-1",
		AuthorID:  "alice",
		Kind:      models.PatchKindInsert,
		Position:  0,
		Payload:   "hello",
		Timestamp: time.Now(),
	}
	envelope, err := models.NewEnvelope(models.EventTypePatch, "session-1", "alice", time.Now(), patch)
	s.Require().NoError(err)
	alice.Send(envelope)

	s.Require().Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(patches) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	s.Equal("hello", patches[0].Payload)
	s.Equal("alice", patches[0].AuthorID)
}

func (s *HandlerTestSuite) TestLateJoinerGetsSnapshot() {
	repo := sessionrepo.NewMemory()
	s.Require().NoError(repo.SaveSession(s.ctx, &sessionrepo.SaveSessionInput{
		Session: &models.Session{
			ID:       "session-1",
			OwnerID:  "alice",
			Document: "package main",
		},
	}))

	s.startRelay(repo)

	_ = s.connectClient("session-1", "alice")

	// Raw dial so the very first frame, the snapshot, can be read
	// before anything else happens on the connection
	conn, _, err := websocket.DefaultDialer.Dial(s.wsURL+"/ws/session-1?participant=bob", nil)
	s.Require().NoError(err)
	defer func() { _ = conn.Close() }()

	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var envelope models.Envelope
	s.Require().NoError(conn.ReadJSON(&envelope))

	s.Require().Equal(models.EventTypePatch, envelope.Type)
	patch, err := envelope.DecodePatch()
	s.Require().NoError(err)
	s.Equal(models.PatchKindReplace, patch.Kind)
	s.Equal("package main", patch.Payload)
}

// A join is announced only by the joining client itself; the relay
// stays quiet, so peers see exactly one join event per joiner.
func (s *HandlerTestSuite) TestJoinDeliveredExactlyOnce() {
	s.startRelay(nil)

	alice := s.connectClient("session-1", "alice")

	var mu sync.Mutex
	var joins []string
	alice.On(models.EventTypeJoin, func(envelope *models.Envelope) {
		roster, err := envelope.DecodeRoster()
		s.Require().NoError(err)
		mu.Lock()
		joins = append(joins, roster.ParticipantID)
		mu.Unlock()
	})

	bob := s.connectClient("session-1", "bob")
	bob.Send(s.rosterEnvelope(models.EventTypeJoin, "session-1", "bob"))

	s.Require().Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(joins) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	// Settle window to catch a relay-side duplicate
	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	s.Equal([]string{"bob"}, joins)
}

// When a connection drops without an in-band leave, the relay speaks
// for the departed participant.
func (s *HandlerTestSuite) TestLeaveAnnouncedOnSilentDrop() {
	s.startRelay(nil)

	alice := s.connectClient("session-1", "alice")

	var mu sync.Mutex
	var leaves []string
	alice.On(models.EventTypeLeave, func(envelope *models.Envelope) {
		roster, err := envelope.DecodeRoster()
		s.Require().NoError(err)
		mu.Lock()
		leaves = append(leaves, roster.ParticipantID)
		mu.Unlock()
	})

	bob := s.connectClient("session-1", "bob")
	bob.Disconnect()

	s.Require().Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(leaves) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	s.Equal([]string{"bob"}, leaves)
}

// A client that announces its own leave must not be announced a second
// time by the relay when the connection closes.
func (s *HandlerTestSuite) TestLeaveNotDuplicatedAfterClientAnnounce() {
	s.startRelay(nil)

	alice := s.connectClient("session-1", "alice")

	var mu sync.Mutex
	var leaves []string
	alice.On(models.EventTypeLeave, func(envelope *models.Envelope) {
		roster, err := envelope.DecodeRoster()
		s.Require().NoError(err)
		mu.Lock()
		leaves = append(leaves, roster.ParticipantID)
		mu.Unlock()
	})

	bob := s.connectClient("session-1", "bob")
	bob.Send(s.rosterEnvelope(models.EventTypeLeave, "session-1", "bob"))

	s.Require().Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(leaves) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	bob.Disconnect()

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	s.Equal([]string{"bob"}, leaves)
}

func (s *HandlerTestSuite) TestServesLiveDocument() {
	repo := sessionrepo.NewMemory()
	s.Require().NoError(repo.SaveSession(s.ctx, &sessionrepo.SaveSessionInput{
		Session: &models.Session{
			ID:       "session-1",
			OwnerID:  "alice",
			Document: "package main",
		},
	}))

	s.startRelay(repo)
	_ = s.connectClient("session-1", "alice")

	resp, err := http.Get(s.httpURL + "/sessions/session-1/document")
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body map[string]string
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal("package main", body["document"])
	s.Equal("session-1", body["session_id"])

	missing, err := http.Get(s.httpURL + "/sessions/nope/document")
	s.Require().NoError(err)
	defer func() { _ = missing.Body.Close() }()
	s.Equal(http.StatusNotFound, missing.StatusCode)
}

func (s *HandlerTestSuite) TestRejectsMissingParticipant() {
	s.startRelay(nil)

	dialer, err := transport.NewWebsocketDialer(s.wsURL)
	s.Require().NoError(err)

	_, err = dialer.Dial(s.ctx, "session-1", "")
	s.Error(err)
}
