// Package sink provides EventSink implementations: the per-connection
// delivery buffer and the permanent pipeline sinks.
package sink

import (
	"chat-hub/domain/event"
	"context"
)

// ConnectionSink buffers events for one client connection. The
// transport's write loop drains Events; Consume never blocks the
// fan-out worker.
type ConnectionSink struct {
	Events chan event.Event
}

func NewConnectionSink(bufferSize int) *ConnectionSink {
	return &ConnectionSink{Events: make(chan event.Event, bufferSize)}
}

// Consume is called by the fan-out worker. A full buffer means the
// client is too slow or already gone: the event is dropped silently,
// which is the documented best-effort push contract.
func (s *ConnectionSink) Consume(ctx context.Context, e event.Event) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
