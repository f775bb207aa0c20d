//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself.
// Supervision, restarts and panic recovery belong to the Supervisor.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision, avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives events from the fan-out worker.
// Implementations must not block: a connection sink buffers and drops,
// it never pushes backpressure into the fan-out loop.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// IRegistry tracks live connections and their room membership.
type IRegistry interface {
	Bind(connID string, sink EventSink)
	Join(connID, roomID string)
	Leave(connID, roomID string)
	Drop(connID string)
	SinksForRoom(roomID, excludeConn string) []EventSink
	AllSinks() []EventSink
}

// IMessageStore is the bounded per-room message log and read-receipt tracker.
type IMessageStore interface {
	Append(message domain.Message) domain.Message
	Recent(roomID string, limit int) []domain.Message
	MarkSeen(roomID string, messageIDs []string, username string) []string
}

// IPresence maps live connections to display names.
type IPresence interface {
	Register(connID, username string) []string
	Unregister(connID string) ([]string, bool)
	OnlineUsers() []string
}

// IBroadcaster is the room-scoped emit surface used by the chat service.
// Emission is fire-and-forget: no delivery guarantee is surfaced to callers.
type IBroadcaster interface {
	Join(connID, roomID string)
	Leave(connID, roomID string)
	Drop(connID string)
	EmitToRoom(roomID string, e event.DomainEvent)
	EmitToRoomExceptSender(roomID, senderConn string, e event.DomainEvent)
	EmitToAll(e event.DomainEvent)
}
