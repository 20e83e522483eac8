package session

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/kngcl/codebattle2-sub001/internal/services/session Service

import "context"

// Service defines the interface for collaborative session operations
type Service interface {
	// CreateSession allocates a new session and joins the owner
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)

	// JoinSession connects the transport and adds or reactivates a participant
	JoinSession(ctx context.Context, input *JoinSessionInput) (*JoinSessionOutput, error)

	// LeaveSession marks a participant inactive and disconnects the transport
	LeaveSession(ctx context.Context, input *LeaveSessionInput) (*LeaveSessionOutput, error)

	// SendPatch applies a local edit and broadcasts it to peers
	SendPatch(ctx context.Context, input *SendPatchInput) (*SendPatchOutput, error)

	// ApplyRemotePatch applies a patch received from a peer
	ApplyRemotePatch(ctx context.Context, input *ApplyRemotePatchInput) (*ApplyRemotePatchOutput, error)

	// ApplyRemoteJoin merges a join received from a peer into the local roster
	ApplyRemoteJoin(ctx context.Context, input *ApplyRemoteJoinInput) (*ApplyRemoteJoinOutput, error)

	// ApplyRemoteLeave marks a departed peer inactive in the local roster
	ApplyRemoteLeave(ctx context.Context, input *ApplyRemoteLeaveInput) (*ApplyRemoteLeaveOutput, error)

	// GetSession returns a snapshot of a session
	GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error)

	// FindSessionByChallenge returns the open session for a challenge
	FindSessionByChallenge(ctx context.Context, input *FindSessionByChallengeInput) (*FindSessionByChallengeOutput, error)

	// ListPublicSessions returns all public, unarchived sessions
	ListPublicSessions(ctx context.Context, input *ListPublicSessionsInput) (*ListPublicSessionsOutput, error)

	// ArchiveSession closes a session permanently
	ArchiveSession(ctx context.Context, input *ArchiveSessionInput) (*ArchiveSessionOutput, error)
}
