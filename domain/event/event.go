// Package event defines the domain events pushed to connected clients.
package event

import (
	"chat-hub/domain"
	"time"
)

// Scope selects the recipient set of an event.
type Scope int

const (
	// ScopeRoom targets every connection joined to Room.
	ScopeRoom Scope = iota
	// ScopeRoomExceptSender targets the room minus ExcludeConn.
	ScopeRoomExceptSender
	// ScopeAll targets every bound connection, regardless of rooms.
	ScopeAll
)

// DomainEvent is the payload carried by an Event envelope.
// EventName is the wire discriminator seen by clients.
type DomainEvent interface {
	EventName() string
}

// Event is the envelope travelling through the fan-out channel.
// Room and ExcludeConn are routing data, not part of the payload.
type Event struct {
	Scope       Scope
	Room        string
	ExcludeConn string
	CreatedAt   time.Time
	Payload     DomainEvent
}

type NewMessage struct {
	Message domain.Message
}

func (NewMessage) EventName() string { return "NewMessage" }

type MessageSeen struct {
	Room      string
	MessageID string
	Username  string
}

func (MessageSeen) EventName() string { return "MessageSeen" }

type UserTyping struct {
	Room     string
	UserID   string
	IsTyping bool
}

func (UserTyping) EventName() string { return "UserTyping" }

type UserListUpdated struct {
	Usernames []string
}

func (UserListUpdated) EventName() string { return "UserListUpdated" }
