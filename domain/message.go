// Package domain contains core concepts of the chat system.
// This file defines the Message entity and its invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a chat event stored in a room log.
// ID and Room are immutable after creation. SeenBy only grows,
// one entry per username, and is mutated exclusively through the store.
type Message struct {
	ID        uuid.UUID
	Room      string
	Author    string
	Content   string
	CreatedAt time.Time
	SeenBy    []string
	// Seq is the insertion sequence number, scoped to the room.
	// Strictly increasing in arrival order at the store.
	Seq uint64
}

// HasSeen reports whether username is already recorded in SeenBy.
func (m Message) HasSeen(username string) bool {
	for _, u := range m.SeenBy {
		if u == username {
			return true
		}
	}
	return false
}
