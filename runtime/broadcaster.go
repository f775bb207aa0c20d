package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain/event"
	"fmt"
	"log/slog"
	"time"
)

// Broadcaster manages room membership and emits events into the
// fan-out channel drained by the EventFanout worker. Emission is
// fire-and-forget: a full channel drops the event with a warning
// rather than blocking the caller. Push is not a delivery guarantee.
type Broadcaster struct {
	log      *slog.Logger
	registry contract.IRegistry
	events   chan event.Event
}

func NewBroadcaster(log *slog.Logger, registry contract.IRegistry, bufferSize int) *Broadcaster {
	return &Broadcaster{
		log:      log,
		registry: registry,
		events:   make(chan event.Event, bufferSize),
	}
}

// Events exposes the fan-out channel for the EventFanout worker.
func (b *Broadcaster) Events() chan event.Event { return b.events }

func (b *Broadcaster) Join(connID, roomID string)  { b.registry.Join(connID, roomID) }
func (b *Broadcaster) Leave(connID, roomID string) { b.registry.Leave(connID, roomID) }
func (b *Broadcaster) Drop(connID string)          { b.registry.Drop(connID) }

// EmitToRoom delivers e to every connection currently joined to roomID.
func (b *Broadcaster) EmitToRoom(roomID string, e event.DomainEvent) {
	b.dispatch(event.Event{
		Scope:     event.ScopeRoom,
		Room:      roomID,
		CreatedAt: time.Now().UTC(),
		Payload:   e,
	})
}

// EmitToRoomExceptSender delivers e to the room minus the sender,
// for ephemeral signals the sender already knows about.
func (b *Broadcaster) EmitToRoomExceptSender(roomID, senderConn string, e event.DomainEvent) {
	b.dispatch(event.Event{
		Scope:       event.ScopeRoomExceptSender,
		Room:        roomID,
		ExcludeConn: senderConn,
		CreatedAt:   time.Now().UTC(),
		Payload:     e,
	})
}

// EmitToAll delivers e to every bound connection.
func (b *Broadcaster) EmitToAll(e event.DomainEvent) {
	b.dispatch(event.Event{
		Scope:     event.ScopeAll,
		CreatedAt: time.Now().UTC(),
		Payload:   e,
	})
}

func (b *Broadcaster) dispatch(e event.Event) {
	select {
	case b.events <- e:
	default:
		b.log.Warn(fmt.Sprintf("Fanout channel full, dropping %s event", e.Payload.EventName()),
			"room", e.Room)
	}
}
