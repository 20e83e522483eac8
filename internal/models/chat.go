package models

import (
	"time"
)

// ChatKind represents the kind of a chat message
type ChatKind string

const (
	// ChatKindText is an ordinary participant-authored message
	ChatKindText ChatKind = "text"

	// ChatKindSystem is an engine-generated message (joins, leaves)
	ChatKindSystem ChatKind = "system"

	// ChatKindExecution carries the result of a code execution run
	ChatKindExecution ChatKind = "execution"
)

// ChatMessage is one entry in a session's ordered chat log
type ChatMessage struct {
	// ID is the unique identifier for this message
	ID string `json:"id"`

	// SessionID is the session the message belongs to
	SessionID string `json:"session_id"`

	// AuthorID is the participant who sent the message
	AuthorID string `json:"author_id"`

	// AuthorName is the display name of the author at send time
	AuthorName string `json:"author_name"`

	// Body is the message text
	Body string `json:"body"`

	// Kind is the kind of message
	Kind ChatKind `json:"kind"`

	// Timestamp orders the message within the session log
	Timestamp time.Time `json:"timestamp"`
}
