package session

import (
	"github.com/sirupsen/logrus"

	"github.com/kngcl/codebattle2-sub001/internal/common/clock"
	"github.com/kngcl/codebattle2-sub001/internal/common/uuid"
	"github.com/kngcl/codebattle2-sub001/internal/models"
	sessionRepo "github.com/kngcl/codebattle2-sub001/internal/repositories/session"
	"github.com/kngcl/codebattle2-sub001/internal/transport"
)

// Config holds configuration for the session service
type Config struct {
	// Maximum number of roster entries per session
	MaxParticipants int

	// Repository dependencies
	SessionRepo sessionRepo.Repository

	// Service dependencies
	Transport     transport.Transport
	Clock         clock.Clock
	UUIDGenerator uuid.UUID

	// Logger defaults to the standard logrus logger
	Logger *logrus.Logger
}

// CreateSessionInput contains parameters for creating a new session
type CreateSessionInput struct {
	// ChallengeID is the challenge the session is opened for
	ChallengeID string

	// OwnerID is the user creating the session
	OwnerID string

	// OwnerName is the display name of the owner
	OwnerName string

	// IsPublic makes the session joinable via share link
	IsPublic bool
}

// CreateSessionOutput contains the result of creating a session
type CreateSessionOutput struct {
	// SessionID is the unique identifier for the created session
	SessionID string

	// Session is a snapshot with the owner already joined
	Session *models.Session
}

// JoinSessionInput contains parameters for joining a session
type JoinSessionInput struct {
	SessionID     string
	ParticipantID string

	// DisplayName is shown to other participants
	DisplayName string
}

// JoinSessionOutput contains the session snapshot a joiner starts from,
// including the full document text
type JoinSessionOutput struct {
	Session *models.Session
}

// LeaveSessionInput contains parameters for leaving a session
type LeaveSessionInput struct {
	SessionID     string
	ParticipantID string
}

// LeaveSessionOutput contains the result of leaving a session
type LeaveSessionOutput struct {
	Success bool
}

// SendPatchInput contains a locally produced patch to apply and broadcast
type SendPatchInput struct {
	SessionID string
	AuthorID  string

	// Patch carries kind, position and payload; ID and timestamps are
	// stamped by the service
	Patch *models.Patch
}

// SendPatchOutput contains the result of applying a local patch
type SendPatchOutput struct {
	// Applied is false when the patch was dropped as invalid
	Applied bool

	// Document is the text after application
	Document string

	// Patch is the stamped patch that was broadcast
	Patch *models.Patch
}

// ApplyRemotePatchInput contains a patch received from a peer
type ApplyRemotePatchInput struct {
	Patch *models.Patch
}

// ApplyRemotePatchOutput contains the result of applying a remote patch
type ApplyRemotePatchOutput struct {
	// Applied is false when the patch was dropped as invalid
	Applied bool

	// Document is the text after application
	Document string
}

// ApplyRemoteJoinInput contains a roster addition received from a peer
type ApplyRemoteJoinInput struct {
	SessionID string
	Roster    *models.RosterPayload
}

// ApplyRemoteJoinOutput contains the session after merging the join
type ApplyRemoteJoinOutput struct {
	Session *models.Session
}

// ApplyRemoteLeaveInput contains a departure received from a peer
type ApplyRemoteLeaveInput struct {
	SessionID string
	Roster    *models.RosterPayload
}

// ApplyRemoteLeaveOutput contains the session after marking the
// participant inactive
type ApplyRemoteLeaveOutput struct {
	Session *models.Session
}

// GetSessionInput identifies a session to fetch
type GetSessionInput struct {
	SessionID string
}

// GetSessionOutput contains a session snapshot
type GetSessionOutput struct {
	Session *models.Session
}

// FindSessionByChallengeInput identifies a challenge to look up
type FindSessionByChallengeInput struct {
	ChallengeID string
}

// FindSessionByChallengeOutput contains the most recent open session
// for the challenge
type FindSessionByChallengeOutput struct {
	Session *models.Session
}

// ListPublicSessionsInput has no parameters
type ListPublicSessionsInput struct {
}

// ListPublicSessionsOutput contains all public, unarchived sessions
type ListPublicSessionsOutput struct {
	Sessions []*models.Session
}

// ArchiveSessionInput identifies a session to archive
type ArchiveSessionInput struct {
	SessionID string

	// RequesterID must be the session owner
	RequesterID string
}

// ArchiveSessionOutput contains the result of archiving
type ArchiveSessionOutput struct {
	Success bool
}
