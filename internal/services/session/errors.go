package session

// SessionError is a custom error type for session-related errors
type SessionError string

// Error implements the error interface
func (e SessionError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrSessionNotFound         SessionError = "session not found"
	ErrSessionArchived         SessionError = "session is archived"
	ErrCapacityExceeded        SessionError = "session is at maximum capacity"
	ErrParticipantNotInSession SessionError = "participant not in session"
	ErrNotSessionOwner         SessionError = "only the session owner may archive it"
	ErrNilConfig               SessionError = "config cannot be nil"
	ErrNilRepository           SessionError = "session repository cannot be nil"
	ErrNilTransport            SessionError = "transport cannot be nil"
	ErrNilClock                SessionError = "clock cannot be nil"
	ErrNilUUIDGenerator        SessionError = "UUID generator cannot be nil"
)
