package runtime

import (
	"chat-hub/domain/event"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_EmitToRoomBuildsRoomEnvelope(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	broadcaster := NewBroadcaster(log, NewRegistry(), 8)

	// When emitting a typing signal to a room
	broadcaster.EmitToRoom("room1", event.UserTyping{Room: "room1", UserID: "alice", IsTyping: true})

	// Then the envelope carries the room scope and routing data
	evt := <-broadcaster.Events()
	req.Equal(event.ScopeRoom, evt.Scope)
	req.Equal("room1", evt.Room)
	req.Empty(evt.ExcludeConn)
	req.False(evt.CreatedAt.IsZero())
	req.Equal("UserTyping", evt.Payload.EventName())
}

func TestBroadcaster_EmitToRoomExceptSenderCarriesExclusion(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	broadcaster := NewBroadcaster(log, NewRegistry(), 8)

	broadcaster.EmitToRoomExceptSender("room1", "conn-42",
		event.UserTyping{Room: "room1", UserID: "alice", IsTyping: true})

	evt := <-broadcaster.Events()
	req.Equal(event.ScopeRoomExceptSender, evt.Scope)
	req.Equal("conn-42", evt.ExcludeConn)
}

func TestBroadcaster_EmitToAllHasNoRoom(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	broadcaster := NewBroadcaster(log, NewRegistry(), 8)

	broadcaster.EmitToAll(event.UserListUpdated{Usernames: []string{"alice"}})

	evt := <-broadcaster.Events()
	req.Equal(event.ScopeAll, evt.Scope)
	req.Empty(evt.Room)
}

func TestBroadcaster_FullChannelDropsInsteadOfBlocking(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	broadcaster := NewBroadcaster(log, NewRegistry(), 1)

	// Given a full fan-out channel
	broadcaster.EmitToAll(event.UserListUpdated{Usernames: []string{"alice"}})

	// When emitting again, the call returns instead of blocking
	broadcaster.EmitToAll(event.UserListUpdated{Usernames: []string{"bob"}})

	// Then only the first event survived
	req.Len(broadcaster.Events(), 1)
	evt := <-broadcaster.Events()
	req.Equal([]string{"alice"}, evt.Payload.(event.UserListUpdated).Usernames)
}
