package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kngcl/codebattle2-sub001/internal/common/clock"
	"github.com/kngcl/codebattle2-sub001/internal/common/uuid"
	"github.com/kngcl/codebattle2-sub001/internal/models"
	sessionsvc "github.com/kngcl/codebattle2-sub001/internal/services/session"
	"github.com/kngcl/codebattle2-sub001/internal/transport"
)

// Config holds configuration for an Engine
type Config struct {
	// SessionService owns rosters, documents and patch application
	SessionService sessionsvc.Service

	// Transport is the persistent connection shared by patches,
	// presence and chat
	Transport transport.Transport

	// Clock stamps presence and chat
	Clock clock.Clock

	// UUIDGenerator mints chat message IDs
	UUIDGenerator uuid.UUID

	// PresenceTTL defaults to models.PresenceTTL
	PresenceTTL time.Duration

	// Logger defaults to the standard logrus logger
	Logger *logrus.Logger
}

// CreateSessionInput contains parameters for creating and joining a
// new session as its owner
type CreateSessionInput struct {
	ChallengeID string
	OwnerID     string
	DisplayName string
	IsPublic    bool
}

// JoinSessionInput contains parameters for joining an existing session
type JoinSessionInput struct {
	SessionID     string
	ParticipantID string
	DisplayName   string
}

// PresenceInput contains a local cursor position to broadcast
type PresenceInput struct {
	Line   int
	Column int

	// Selection is the selected range, if any
	Selection *models.SelectionRange
}
