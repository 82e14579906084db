// internal/models/session.go
package models

import "time"

// SessionState enumerates the conversation state machine states.
type SessionState string

const (
	StateNew               SessionState = "NEW"
	StateAreaClarification SessionState = "AREA_CLARIFICATION"
	StateIdentity          SessionState = "IDENTITY_COLLECTION"
	StateConfirmation      SessionState = "CONFIRMATION"
	StateTicketCreated     SessionState = "TICKET_CREATED"
	StateFAQHandoff        SessionState = "FAQ_HANDOFF"
)

// Terminal reports whether s is a terminal state. A guest whose session is
// terminal starts a fresh NEW session with their next message.
func (s SessionState) Terminal() bool {
	return s == StateTicketCreated || s == StateFAQHandoff
}

// ConversationSession is the per-guest conversation state, keyed by the guest
// identity (conversation id). Only the conversation engine mutates it.
type ConversationSession struct {
	ConversationID string       `json:"conversationId"`
	State          SessionState `json:"state"`

	// PendingDetail is the original actionable text awaiting routing.
	PendingDetail string `json:"pendingDetail,omitempty"`

	// ExtractedRoom is a room number pre-parsed from the original message.
	// It is a hint only: identity collection always asks and the confirmed
	// value is the source of truth.
	ExtractedRoom string `json:"extractedRoom,omitempty"`

	GuestName  string `json:"guestName,omitempty"`
	RoomNumber string `json:"roomNumber,omitempty"`

	// Decision captured from whichever stage produced the final area.
	Decision *RoutingDecision `json:"decision,omitempty"`

	// ClarifyAttempts counts invalid replies to the area menu; bounded by
	// config before escalation.
	ClarifyAttempts int `json:"clarifyAttempts,omitempty"`

	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// NewConversationSession creates a fresh session in state NEW.
func NewConversationSession(conversationID string, now time.Time) *ConversationSession {
	return &ConversationSession{
		ConversationID: conversationID,
		State:          StateNew,
		CreatedAt:      now,
		LastUpdatedAt:  now,
	}
}
