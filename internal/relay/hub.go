package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kngcl/codebattle2-sub001/internal/models"
	sessionrepo "github.com/kngcl/codebattle2-sub001/internal/repositories/session"
)

// bridgeChannel returns the pub/sub channel name for a session
func bridgeChannel(sessionID string) string {
	return fmt.Sprintf("collab:relay:%s", sessionID)
}

// bridgeMessage wraps an envelope with the publishing node so a node
// can ignore its own publications
type bridgeMessage struct {
	NodeID   string           `json:"node_id"`
	Envelope *models.Envelope `json:"envelope"`
}

// Config holds configuration for a Hub
type Config struct {
	// NodeID distinguishes this relay instance on the pub/sub bridge.
	// Required when RedisClient is set.
	NodeID string

	// RedisClient, when set, bridges rooms across relay instances
	RedisClient redis.UniversalClient

	// SessionRepo, when set, persists room documents as patches land
	SessionRepo sessionrepo.Repository

	// Logger defaults to the standard logrus logger
	Logger *logrus.Logger
}

// Hub is the registry of active rooms. It owns the optional Redis
// bridge and document persistence that individual rooms stay free of.
type Hub struct {
	nodeID      string
	redisClient redis.UniversalClient
	sessionRepo sessionrepo.Repository
	logger      *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	rooms   map[string]*Room
	bridges map[string]*redis.PubSub
}

// NewHub creates a hub
func NewHub(cfg *Config) (*Hub, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.RedisClient != nil && cfg.NodeID == "" {
		return nil, errors.New("node ID is required when the Redis bridge is enabled")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		nodeID:      cfg.NodeID,
		redisClient: cfg.RedisClient,
		sessionRepo: cfg.SessionRepo,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		rooms:       make(map[string]*Room),
		bridges:     make(map[string]*redis.PubSub),
	}, nil
}

// GetOrCreate returns the room for a session, creating it on first
// use. A freshly created room is seeded from the session repository
// and attached to the Redis bridge when those are configured.
func (h *Hub) GetOrCreate(sessionID string) *Room {
	h.mu.Lock()
	if room, ok := h.rooms[sessionID]; ok {
		h.mu.Unlock()
		return room
	}

	room := NewRoom(sessionID, h.logger)
	h.rooms[sessionID] = room

	var pubsub *redis.PubSub
	if h.redisClient != nil {
		pubsub = h.redisClient.Subscribe(h.ctx, bridgeChannel(sessionID))
		h.bridges[sessionID] = pubsub
	}
	h.mu.Unlock()

	if h.sessionRepo != nil {
		if session, err := h.sessionRepo.GetSession(h.ctx, &sessionrepo.GetSessionInput{
			SessionID: sessionID,
		}); err == nil {
			room.SetDocument(session.Document)
		}
	}

	if pubsub != nil {
		go h.bridgeLoop(room, pubsub)
	}

	return room
}

// Delete drops a room and detaches it from the bridge
func (h *Hub) Delete(sessionID string) {
	h.mu.Lock()
	delete(h.rooms, sessionID)
	pubsub := h.bridges[sessionID]
	delete(h.bridges, sessionID)
	h.mu.Unlock()

	if pubsub != nil {
		if err := pubsub.Close(); err != nil {
			h.logger.WithError(err).WithField("session", sessionID).Warn("failed to close bridge subscription")
		}
	}
}

// Document returns the tracked document for a session, if the room is
// live on this node
func (h *Hub) Document(sessionID string) (string, bool) {
	h.mu.RLock()
	room, ok := h.rooms[sessionID]
	h.mu.RUnlock()
	if !ok {
		return "", false
	}
	return room.Document(), true
}

// Forward routes an envelope received from a local member: the room
// document advances on patches, local members get the event, and the
// bridge carries it to peer nodes.
func (h *Hub) Forward(ctx context.Context, room *Room, envelope *models.Envelope) {
	if envelope.Type == models.EventTypePatch {
		room.ApplyPatch(envelope)
		h.persistDocument(ctx, room)
	}

	room.Broadcast(envelope, envelope.SenderID)

	if h.redisClient != nil {
		h.publish(ctx, room.ID(), envelope)
	}
}

// bridgeLoop applies envelopes published by peer nodes to the local room
func (h *Hub) bridgeLoop(room *Room, pubsub *redis.PubSub) {
	for msg := range pubsub.Channel() {
		var bridged bridgeMessage
		if err := json.Unmarshal([]byte(msg.Payload), &bridged); err != nil {
			h.logger.WithError(err).WithField("session", room.ID()).Warn("undecodable bridge message")
			continue
		}
		if bridged.NodeID == h.nodeID || bridged.Envelope == nil {
			continue
		}

		if bridged.Envelope.Type == models.EventTypePatch {
			room.ApplyPatch(bridged.Envelope)
		}
		room.Broadcast(bridged.Envelope, bridged.Envelope.SenderID)
	}
}

func (h *Hub) publish(ctx context.Context, sessionID string, envelope *models.Envelope) {
	payload, err := json.Marshal(&bridgeMessage{
		NodeID:   h.nodeID,
		Envelope: envelope,
	})
	if err != nil {
		h.logger.WithError(err).WithField("session", sessionID).Error("failed to marshal bridge message")
		return
	}

	if err := h.redisClient.Publish(ctx, bridgeChannel(sessionID), payload).Err(); err != nil {
		h.logger.WithError(err).WithField("session", sessionID).Warn("failed to publish to bridge")
	}
}

// persistDocument stores the room's document on its session record.
// Best effort, a miss is logged and the stream carries on.
func (h *Hub) persistDocument(ctx context.Context, room *Room) {
	if h.sessionRepo == nil {
		return
	}

	session, err := h.sessionRepo.GetSession(ctx, &sessionrepo.GetSessionInput{
		SessionID: room.ID(),
	})
	if err != nil {
		h.logger.WithError(err).WithField("session", room.ID()).Warn("cannot load session for document persistence")
		return
	}

	session.Document = room.Document()
	if err := h.sessionRepo.SaveSession(ctx, &sessionrepo.SaveSessionInput{Session: session}); err != nil {
		h.logger.WithError(err).WithField("session", room.ID()).Warn("failed to persist room document")
	}
}

// Close shuts down the bridge subscriptions
func (h *Hub) Close() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()
	for sessionID, pubsub := range h.bridges {
		if err := pubsub.Close(); err != nil {
			h.logger.WithError(err).WithField("session", sessionID).Warn("failed to close bridge subscription")
		}
	}
	h.bridges = make(map[string]*redis.PubSub)
}
