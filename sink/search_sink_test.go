package sink

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/search"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestSearchSink_IndexesNewMessages(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	index, err := search.NewInMemoryIndex(log)
	req.NoError(err)
	defer index.Close()

	searchSink := NewSearchSink(index, log)

	msg := domain.Message{
		ID:        uuid.New(),
		Room:      "room1",
		Author:    "alice",
		Content:   "the deployment pipeline is green again and everything should work fine now",
		CreatedAt: time.Now().UTC(),
	}

	// When a NewMessage event flows through the sink
	err = searchSink.Consume(context.Background(), event.Event{
		Scope:   event.ScopeRoom,
		Room:    "room1",
		Payload: event.NewMessage{Message: msg},
	})
	req.NoError(err)

	// Then the message is searchable with its detected language
	hits, err := index.Search(context.Background(), "room1", "pipeline", 10)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(msg.ID.String(), hits[0].MessageID)
	req.Equal("en", hits[0].Language)
}

func TestSearchSink_IgnoresOtherEvents(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	index, err := search.NewInMemoryIndex(log)
	req.NoError(err)
	defer index.Close()

	searchSink := NewSearchSink(index, log)

	// Typing and presence events pass through without touching the index
	req.NoError(searchSink.Consume(context.Background(), event.Event{
		Scope:   event.ScopeRoom,
		Room:    "room1",
		Payload: event.UserTyping{Room: "room1", UserID: "alice", IsTyping: true},
	}))
	req.NoError(searchSink.Consume(context.Background(), event.Event{
		Scope:   event.ScopeAll,
		Payload: event.UserListUpdated{Usernames: []string{"alice"}},
	}))
}
