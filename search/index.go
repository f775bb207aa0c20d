// Package search maintains a full-text index over stored messages.
// The index is in-memory and best-effort: it follows the room logs
// through the fan-out pipeline and is never consulted by the store.
package search

import (
	"chat-hub/domain"
	"context"
	"log/slog"
	"time"

	"github.com/blugelabs/bluge"
)

// Hit is one search result.
type Hit struct {
	MessageID string    `json:"messageId"`
	Room      string    `json:"roomId"`
	Author    string    `json:"fromUserId"`
	Content   string    `json:"text"`
	Language  string    `json:"language,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Index wraps a Bluge writer over message documents.
type Index struct {
	log    *slog.Logger
	writer *bluge.Writer
}

// NewInMemoryIndex opens a Bluge index that lives and dies with the
// process, matching the lifetime of the message logs it mirrors.
func NewInMemoryIndex(log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, err
	}
	return &Index{log: log, writer: writer}, nil
}

// Add indexes one message. lang is the detected ISO-639-1 code, empty
// when detection was inconclusive.
func (i *Index) Add(msg domain.Message, lang string) error {
	doc := bluge.NewDocument(msg.ID.String()).
		AddField(bluge.NewTextField("content", msg.Content).StoreValue()).
		AddField(bluge.NewKeywordField("room", msg.Room).StoreValue()).
		AddField(bluge.NewKeywordField("author", msg.Author).StoreValue()).
		AddField(bluge.NewKeywordField("lang", lang).StoreValue()).
		AddField(bluge.NewStoredOnlyField("created_at",
			[]byte(msg.CreatedAt.UTC().Format(time.RFC3339Nano))))
	return i.writer.Update(doc.ID(), doc)
}

// Search runs a room-scoped full-text query and returns up to limit
// hits by relevance.
func (i *Index) Search(ctx context.Context, roomID, terms string, limit int) ([]Hit, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("content")).
		AddMust(bluge.NewTermQuery(roomID).SetField("room"))

	iter, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, limit)
	match, err := iter.Next()
	for err == nil && match != nil {
		var hit Hit
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "room":
				hit.Room = string(value)
			case "author":
				hit.Author = string(value)
			case "content":
				hit.Content = string(value)
			case "lang":
				hit.Language = string(value)
			case "created_at":
				if t, parseErr := time.Parse(time.RFC3339Nano, string(value)); parseErr == nil {
					hit.CreatedAt = t
				}
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		hits = append(hits, hit)
		match, err = iter.Next()
	}
	if err != nil {
		return nil, err
	}
	return hits, nil
}

// Close releases the underlying segments.
func (i *Index) Close() error {
	return i.writer.Close()
}
