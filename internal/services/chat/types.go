package chat

import (
	"github.com/sirupsen/logrus"

	"github.com/kngcl/codebattle2-sub001/internal/common/clock"
	"github.com/kngcl/codebattle2-sub001/internal/common/uuid"
	"github.com/kngcl/codebattle2-sub001/internal/models"
	"github.com/kngcl/codebattle2-sub001/internal/transport"
)

// Config holds configuration for a chat relay
type Config struct {
	// SessionID is the session the relay belongs to
	SessionID string

	// ParticipantID is the local author; their own messages never
	// count as unread
	ParticipantID string

	// DisplayName is stamped on outbound messages
	DisplayName string

	// Transport carries outbound chat envelopes
	Transport transport.Transport

	// Clock stamps messages
	Clock clock.Clock

	// UUIDGenerator mints message IDs
	UUIDGenerator uuid.UUID

	// Logger defaults to the standard logrus logger
	Logger *logrus.Logger
}

// SendInput contains a message to broadcast
type SendInput struct {
	Body string

	// Kind defaults to ChatKindText
	Kind models.ChatKind
}

// SendOutput contains the stamped message that was broadcast
type SendOutput struct {
	Message *models.ChatMessage
}
