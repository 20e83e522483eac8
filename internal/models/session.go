package models

import (
	"time"
)

const (
	// DefaultMaxParticipants is the roster cap applied to new sessions
	DefaultMaxParticipants = 10

	// DefaultLanguage is the language tag assigned to new session documents
	DefaultLanguage = "plaintext"
)

// Session represents a shared-document collaboration context
type Session struct {
	// ID is the unique identifier for this session
	ID string `json:"id"`

	// ChallengeID is the challenge this session was opened for
	ChallengeID string `json:"challenge_id"`

	// OwnerID is the participant who created the session
	OwnerID string `json:"owner_id"`

	// Participants is the roster in insertion order, unique by ID.
	// Records are retained after leave so rejoin and history work.
	Participants []*Participant `json:"participants"`

	// Document is the current shared document text
	Document string `json:"document"`

	// Language is the language tag for the document
	Language string `json:"language"`

	// IsPublic indicates whether the session is joinable via share link
	IsPublic bool `json:"is_public"`

	// MaxParticipants is the roster cap enforced at join time
	MaxParticipants int `json:"max_participants"`

	// Archived indicates the session has been explicitly closed
	Archived bool `json:"archived"`

	// CreatedAt is when the session was created
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the session was last mutated
	UpdatedAt time.Time `json:"updated_at"`
}

// Participant returns the roster entry with the given ID, or nil
func (s *Session) Participant(id string) *Participant {
	for _, p := range s.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ActiveCount returns the number of active roster entries
func (s *Session) ActiveCount() int {
	count := 0
	for _, p := range s.Participants {
		if p.IsActive {
			count++
		}
	}
	return count
}
