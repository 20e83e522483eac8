package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType identifies the payload carried by an envelope
type EventType string

const (
	// EventTypePatch carries a document Patch
	EventTypePatch EventType = "patch"

	// EventTypePresence carries a PresenceUpdate
	EventTypePresence EventType = "presence"

	// EventTypeChat carries a ChatMessage
	EventTypeChat EventType = "chat"

	// EventTypeJoin announces a participant joining the session
	EventTypeJoin EventType = "join"

	// EventTypeLeave announces a participant leaving the session
	EventTypeLeave EventType = "leave"
)

// Envelope is the wire event wrapper exchanged over the transport
type Envelope struct {
	// Type identifies the payload
	Type EventType `json:"type"`

	// SessionID is the session the event belongs to
	SessionID string `json:"session_id"`

	// SenderID is the participant that produced the event
	SenderID string `json:"sender_id"`

	// Payload is the type-specific body, encoded as JSON
	Payload json.RawMessage `json:"payload"`

	// Timestamp is epoch milliseconds at send time
	Timestamp int64 `json:"timestamp"`
}

// RosterPayload is the payload for join and leave events
type RosterPayload struct {
	// ParticipantID is the participant joining or leaving
	ParticipantID string `json:"participant_id"`

	// DisplayName is the participant's display name
	DisplayName string `json:"display_name"`

	// ColorIndex is the participant's assigned palette index
	ColorIndex int `json:"color_index"`

	// Color is the rendered hex value for the palette index, filled on
	// join announcements so clients need no palette table of their own
	Color string `json:"color,omitempty"`
}

// NewEnvelope wraps a payload for the wire
func NewEnvelope(eventType EventType, sessionID, senderID string, at time.Time, payload interface{}) (*Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return &Envelope{
		Type:      eventType,
		SessionID: sessionID,
		SenderID:  senderID,
		Payload:   body,
		Timestamp: at.UnixMilli(),
	}, nil
}

// DecodePatch unmarshals the envelope payload as a Patch
func (e *Envelope) DecodePatch() (*Patch, error) {
	var patch Patch
	if err := json.Unmarshal(e.Payload, &patch); err != nil {
		return nil, fmt.Errorf("failed to decode patch payload: %w", err)
	}
	return &patch, nil
}

// DecodePresence unmarshals the envelope payload as a PresenceUpdate
func (e *Envelope) DecodePresence() (*PresenceUpdate, error) {
	var update PresenceUpdate
	if err := json.Unmarshal(e.Payload, &update); err != nil {
		return nil, fmt.Errorf("failed to decode presence payload: %w", err)
	}
	return &update, nil
}

// DecodeChat unmarshals the envelope payload as a ChatMessage
func (e *Envelope) DecodeChat() (*ChatMessage, error) {
	var msg ChatMessage
	if err := json.Unmarshal(e.Payload, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode chat payload: %w", err)
	}
	return &msg, nil
}

// DecodeRoster unmarshals the envelope payload as a RosterPayload
func (e *Envelope) DecodeRoster() (*RosterPayload, error) {
	var roster RosterPayload
	if err := json.Unmarshal(e.Payload, &roster); err != nil {
		return nil, fmt.Errorf("failed to decode roster payload: %w", err)
	}
	return &roster, nil
}
