package search

import (
	"chat-hub/domain"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func indexedMessage(room, author, content string) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		Room:      room,
		Author:    author,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

func TestIndex_SearchIsRoomScoped(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	index, err := NewInMemoryIndex(log)
	req.NoError(err)
	defer index.Close()

	// Given the same word in two rooms
	inRoom := indexedMessage("room1", "alice", "deployment finished without issues")
	elsewhere := indexedMessage("room2", "bob", "deployment still running")
	req.NoError(index.Add(inRoom, "en"))
	req.NoError(index.Add(elsewhere, "en"))

	// When searching inside room1
	hits, err := index.Search(context.Background(), "room1", "deployment", 10)
	req.NoError(err)

	// Then only the room1 message matches
	req.Len(hits, 1)
	req.Equal(inRoom.ID.String(), hits[0].MessageID)
	req.Equal("room1", hits[0].Room)
	req.Equal("alice", hits[0].Author)
	req.Equal("deployment finished without issues", hits[0].Content)
	req.Equal("en", hits[0].Language)
	req.False(hits[0].CreatedAt.IsZero())
}

func TestIndex_NoMatchReturnsEmpty(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	index, err := NewInMemoryIndex(log)
	req.NoError(err)
	defer index.Close()

	req.NoError(index.Add(indexedMessage("room1", "alice", "hello world"), ""))

	hits, err := index.Search(context.Background(), "room1", "deployment", 10)
	req.NoError(err)
	req.Empty(hits)
}

func TestIndex_ReindexingSameIdReplacesDocument(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	index, err := NewInMemoryIndex(log)
	req.NoError(err)
	defer index.Close()

	msg := indexedMessage("room1", "alice", "first version")
	req.NoError(index.Add(msg, "en"))

	// When the same message id is indexed again with new content
	msg.Content = "second version"
	req.NoError(index.Add(msg, "en"))

	// Then the old content no longer matches
	hits, err := index.Search(context.Background(), "room1", "first", 10)
	req.NoError(err)
	req.Empty(hits)

	hits, err = index.Search(context.Background(), "room1", "second", 10)
	req.NoError(err)
	req.Len(hits, 1)
}

func TestIndex_LimitCapsResults(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	index, err := NewInMemoryIndex(log)
	req.NoError(err)
	defer index.Close()

	for i := 0; i < 5; i++ {
		req.NoError(index.Add(indexedMessage("room1", "alice", "release notes"), "en"))
	}

	hits, err := index.Search(context.Background(), "room1", "release", 2)
	req.NoError(err)
	req.Len(hits, 2)
}
