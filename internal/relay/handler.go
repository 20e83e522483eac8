package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/kngcl/codebattle2-sub001/internal/common/clock"
	"github.com/kngcl/codebattle2-sub001/internal/common/uuid"
	"github.com/kngcl/codebattle2-sub001/internal/models"
)

const writeTimeout = 10 * time.Second

// HandlerConfig holds configuration for the websocket handler
type HandlerConfig struct {
	// Hub is the room registry. Required.
	Hub *Hub

	// Clock stamps the envelopes the handler itself emits
	Clock clock.Clock

	// UUIDGenerator mints IDs for handler-emitted patches
	UUIDGenerator uuid.UUID

	// Logger defaults to the standard logrus logger
	Logger *logrus.Logger
}

// Handler upgrades HTTP requests to websocket connections and pumps
// envelopes between members and their room
type Handler struct {
	hub      *Hub
	clock    clock.Clock
	uuid     uuid.UUID
	logger   *logrus.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a websocket handler
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if cfg == nil || cfg.Hub == nil {
		return nil, errors.New("hub cannot be nil")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = &clock.DefaultClock{}
	}
	generator := cfg.UUIDGenerator
	if generator == nil {
		generator = uuid.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Handler{
		hub:    cfg.Hub,
		clock:  clk,
		uuid:   generator,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

// Register mounts the websocket and document routes on a router
func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/ws/{session_id}", h.serveSession)
	router.HandleFunc("/sessions/{session_id}/document", h.serveDocument).Methods(http.MethodGet)
}

// serveDocument returns the live document of a room hosted on this
// relay, for clients resyncing out of band
func (h *Handler) serveDocument(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	document, ok := h.hub.Document(sessionID)
	if !ok {
		http.Error(w, "session is not live on this relay", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"session_id": sessionID,
		"document":   document,
	}); err != nil {
		h.logger.WithError(err).Warn("failed to write document response")
	}
}

func (h *Handler) serveSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	participantID := r.URL.Query().Get("participant")
	if sessionID == "" || participantID == "" {
		http.Error(w, "session and participant are required", http.StatusBadRequest)
		return
	}
	displayName := r.URL.Query().Get("name")
	if displayName == "" {
		displayName = participantID
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	log := h.logger.WithFields(logrus.Fields{
		"session":     sessionID,
		"participant": participantID,
	})
	log.Info("participant connected")

	room := h.hub.GetOrCreate(sessionID)
	member := room.Join(participantID)

	// Catch the newcomer up before any live events reach them
	if doc := room.Document(); doc != "" {
		if err := h.writeSnapshot(conn, sessionID, doc); err != nil {
			log.WithError(err).Warn("failed to send document snapshot")
		}
	}

	// The request context dies with the hijacked connection, so the
	// pumps and bridge publishes run on their own context
	ctx := context.Background()

	// Joins are announced by the joining client itself, so the relay
	// stays quiet here and peers see exactly one join event.
	go h.writePump(conn, member, log)
	announcedLeave := h.readPump(ctx, conn, room, member, log)

	room.Leave(member)
	if !announcedLeave {
		// The connection dropped without a leave in-band, so the relay
		// speaks for the departed participant
		h.announce(ctx, room, models.EventTypeLeave, sessionID, participantID, displayName)
	}
	if room.Empty() {
		h.hub.Delete(sessionID)
	}
	log.Info("participant disconnected")
}

// readPump feeds inbound envelopes into the hub until the connection
// drops. It reports whether the member announced its own leave, so the
// caller does not announce a second one.
func (h *Handler) readPump(ctx context.Context, conn *websocket.Conn, room *Room, member *Member, log *logrus.Entry) bool {
	defer func() {
		if err := conn.Close(); err != nil {
			log.WithError(err).Debug("close after read loop")
		}
	}()

	announcedLeave := false
	for {
		var envelope models.Envelope
		if err := conn.ReadJSON(&envelope); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("connection dropped")
			}
			return announcedLeave
		}

		// The connection, not the payload, is the authority on identity
		envelope.SessionID = room.ID()
		envelope.SenderID = member.ParticipantID
		if envelope.Type == models.EventTypeLeave {
			announcedLeave = true
		}

		h.hub.Forward(ctx, room, &envelope)
	}
}

func (h *Handler) writePump(conn *websocket.Conn, member *Member, log *logrus.Entry) {
	for envelope := range member.Events {
		if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			log.WithError(err).Debug("write deadline")
			return
		}
		if err := conn.WriteJSON(envelope); err != nil {
			log.WithError(err).Debug("write failed, stopping pump")
			return
		}
	}
}

// writeSnapshot sends the room document as one whole-document patch
func (h *Handler) writeSnapshot(conn *websocket.Conn, sessionID, document string) error {
	patch := &models.Patch{
		ID:        h.uuid.NewUUID(),
		SessionID: sessionID,
		Kind:      models.PatchKindReplace,
		Position:  0,
		Payload:   document,
		Timestamp: h.clock.Now(),
	}
	envelope, err := models.NewEnvelope(models.EventTypePatch, sessionID, "", h.clock.Now(), patch)
	if err != nil {
		return err
	}
	return conn.WriteJSON(envelope)
}

// announce broadcasts a join or leave event to the room and bridge
func (h *Handler) announce(ctx context.Context, room *Room, eventType models.EventType, sessionID, participantID, displayName string) {
	envelope, err := models.NewEnvelope(eventType, sessionID, participantID, h.clock.Now(), &models.RosterPayload{
		ParticipantID: participantID,
		DisplayName:   displayName,
	})
	if err != nil {
		h.logger.WithError(err).Error("failed to build roster envelope")
		return
	}
	h.hub.Forward(ctx, room, envelope)
}
