// internal/models/message.go
package models

import "time"

// Message is one inbound guest message as delivered by the transport layer.
// Immutable once received. ChannelMessageID is the transport-level message id
// used for idempotent de-duplication.
type Message struct {
	ConversationID   string    `json:"conversationId"`
	Text             string    `json:"text"`
	ChannelMessageID string    `json:"channelMessageId"`
	ReceivedAt       time.Time `json:"receivedAt"`
}

// Awaiting tells the transport what kind of guest input the engine expects
// next, so channels can render richer UIs (quick replies, menus).
type Awaiting string

const (
	AwaitingNone         Awaiting = "none"
	AwaitingMenuChoice   Awaiting = "menu-choice"
	AwaitingIdentity     Awaiting = "identity"
	AwaitingConfirmation Awaiting = "confirmation"
)

// Reply is what the engine hands back to the transport for delivery. The
// engine never sends messages itself. Duplicate marks a redelivered message;
// the transport must not send anything for it.
type Reply struct {
	Text      string   `json:"text"`
	Awaiting  Awaiting `json:"awaiting"`
	Duplicate bool     `json:"duplicate,omitempty"`
	TicketID  string   `json:"ticketId,omitempty"`
}
