package models

import (
	"time"
)

// PatchKind represents the kind of edit a patch describes
type PatchKind string

const (
	// PatchKindInsert inserts the payload at the patch position
	PatchKindInsert PatchKind = "insert"

	// PatchKindDelete removes len(payload) characters at the patch position
	PatchKindDelete PatchKind = "delete"

	// PatchKindReplace overwrites the range covered by the payload
	PatchKindReplace PatchKind = "replace"
)

// Patch is a minimal description of how a document text changed
type Patch struct {
	// ID is the unique identifier for this patch
	ID string `json:"id"`

	// SessionID is the session the patch belongs to
	SessionID string `json:"session_id"`

	// AuthorID is the participant who produced the edit
	AuthorID string `json:"author_id"`

	// Kind is the kind of edit
	Kind PatchKind `json:"kind"`

	// Position is the 0-based rune offset into the document
	Position int `json:"position"`

	// Payload is the inserted, deleted or replacing text
	Payload string `json:"payload"`

	// Timestamp is when the edit was produced
	Timestamp time.Time `json:"timestamp"`
}
