package models

import (
	"time"
)

// PresenceTTL is how long an unrefreshed presence entry stays visible
const PresenceTTL = 5 * time.Second

// SelectionRange is an optional selected span accompanying a cursor position
type SelectionRange struct {
	// StartLine and StartColumn anchor the selection
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`

	// EndLine and EndColumn close the selection
	EndLine   int `json:"end_line"`
	EndColumn int `json:"end_column"`
}

// PresenceUpdate is a participant's current cursor and selection location
type PresenceUpdate struct {
	// ParticipantID is the participant the cursor belongs to
	ParticipantID string `json:"participant_id"`

	// SessionID is the session the cursor is in
	SessionID string `json:"session_id"`

	// Line is the 0-based cursor line
	Line int `json:"line"`

	// Column is the 0-based cursor column
	Column int `json:"column"`

	// Selection is the selected range, if any
	Selection *SelectionRange `json:"selection,omitempty"`

	// Timestamp is when the update was produced
	Timestamp time.Time `json:"timestamp"`

	// ExpiresAt is Timestamp plus the presence TTL; entries past it are
	// removed, not merely flagged stale
	ExpiresAt time.Time `json:"expires_at"`
}
