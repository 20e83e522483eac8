package models

import (
	"time"
)

// Participant represents one connected or previously-connected user
// within a session
type Participant struct {
	// ID is the unique identifier of the user within the session
	ID string `json:"id"`

	// DisplayName is the name shown to other participants
	DisplayName string `json:"display_name"`

	// ColorIndex is an index into the fixed cursor color palette
	ColorIndex int `json:"color_index"`

	// IsActive indicates the participant is currently in the session.
	// Leaving flips this to false; the record is never removed.
	IsActive bool `json:"is_active"`

	// JoinedAt is when the participant first joined the session
	JoinedAt time.Time `json:"joined_at"`

	// LastSeenAt is when the participant was last active
	LastSeenAt time.Time `json:"last_seen_at"`
}
