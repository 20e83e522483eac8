package relay

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/kngcl/codebattle2-sub001/internal/differ"
	"github.com/kngcl/codebattle2-sub001/internal/models"
)

// memberBuffer is the per-member outbound queue depth. A member that
// falls this far behind starts losing events and is expected to resync.
const memberBuffer = 32

// Member is one connected participant's view of a room
type Member struct {
	// ParticipantID identifies the connection's participant
	ParticipantID string

	// Events receives envelopes broadcast by other members
	Events chan *models.Envelope
}

// Room fans envelopes out to its members and tracks the document the
// patch stream has produced so far, so late joiners can be caught up.
type Room struct {
	id     string
	logger *logrus.Logger

	mu       sync.RWMutex
	members  map[*Member]bool
	document string
}

// NewRoom creates an empty room for one session
func NewRoom(id string, logger *logrus.Logger) *Room {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Room{
		id:      id,
		logger:  logger,
		members: make(map[*Member]bool),
	}
}

// ID returns the session ID the room serves
func (r *Room) ID() string {
	return r.id
}

// Join registers a new member and returns its event channel handle
func (r *Room) Join(participantID string) *Member {
	member := &Member{
		ParticipantID: participantID,
		Events:        make(chan *models.Envelope, memberBuffer),
	}

	r.mu.Lock()
	r.members[member] = true
	r.mu.Unlock()

	return member
}

// Leave removes a member and closes its event channel
func (r *Room) Leave(member *Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.members[member] {
		delete(r.members, member)
		close(member.Events)
	}
}

// Broadcast delivers an envelope to every member except those owned by
// the sender. A member whose queue is full loses the event.
func (r *Room) Broadcast(envelope *models.Envelope, senderID string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for member := range r.members {
		if member.ParticipantID == senderID {
			continue
		}
		select {
		case member.Events <- envelope:
		default:
			r.logger.WithFields(logrus.Fields{
				"session":     r.id,
				"participant": member.ParticipantID,
				"event_type":  envelope.Type,
			}).Warn("member queue full, dropping event")
		}
	}
}

// ApplyPatch advances the room's document with a patch envelope.
// Invalid patches leave the document untouched.
func (r *Room) ApplyPatch(envelope *models.Envelope) {
	patch, err := envelope.DecodePatch()
	if err != nil {
		r.logger.WithError(err).WithField("session", r.id).Warn("undecodable patch envelope")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	updated, err := differ.Apply(r.document, patch)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"session":  r.id,
			"patch_id": patch.ID,
			"author":   patch.AuthorID,
		}).WithError(err).Warn("dropping patch that does not fit the room document")
		return
	}
	r.document = updated
}

// Document returns the current document text
func (r *Room) Document() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.document
}

// SetDocument seeds the document, used when a room is recreated from a
// persisted session
func (r *Room) SetDocument(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.document = text
}

// Empty reports whether the room has no members left
func (r *Room) Empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members) == 0
}

// MemberCount returns the number of connected members
func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
