package sink

import (
	"chat-hub/domain/event"
	"chat-hub/search"
	"context"
	"log/slog"

	"github.com/abadojack/whatlanggo"
)

// SearchSink feeds every stored message into the full-text index.
// Registered as a permanent fan-out sink, so it observes the same
// event stream the clients do.
type SearchSink struct {
	index *search.Index
	log   *slog.Logger
}

func NewSearchSink(index *search.Index, log *slog.Logger) *SearchSink {
	return &SearchSink{index: index, log: log}
}

func (s *SearchSink) Consume(_ context.Context, e event.Event) error {
	msg, ok := e.Payload.(event.NewMessage)
	if !ok {
		return nil
	}

	var lang string
	if info := whatlanggo.Detect(msg.Message.Content); info.IsReliable() {
		lang = info.Lang.Iso6391()
	}

	if err := s.index.Add(msg.Message, lang); err != nil {
		// Indexing is best-effort; the room log stays authoritative.
		s.log.Warn("Failed to index message", "id", msg.Message.ID, "error", err)
		return err
	}
	return nil
}
