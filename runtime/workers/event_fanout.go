package workers

import (
	"chat-hub/contract"
	"chat-hub/domain/event"
	"context"
	"log/slog"
	"time"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout drains the broadcast channel and delivers each event to
// the sinks its scope resolves to, plus every permanent sink.
//
// It provides best-effort fan-out with no guarantees regarding
// delivery, durability, or retries; a sink that errors or times out is
// skipped, never retried. Because a single goroutine drains the
// channel, events emitted by one caller flow reach each sink in
// emission order.
type EventFanout struct {
	log            *slog.Logger
	registry       contract.IRegistry
	events         chan event.Event
	permanentSinks []contract.EventSink
	sinkTimeout    time.Duration
	dropped        func()
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	events chan event.Event, sinkTimeout time.Duration,
	permanentSinks ...contract.EventSink) *EventFanout {
	return &EventFanout{
		log:            log,
		registry:       registry,
		events:         events,
		permanentSinks: permanentSinks,
		sinkTimeout:    sinkTimeout,
	}
}

// OnDrop installs a callback invoked once per failed sink delivery.
func (w *EventFanout) OnDrop(fn func()) { w.dropped = fn }

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout delivers one event to its recipient set.
func (w *EventFanout) Fanout(ctx context.Context, evt event.Event) {
	for _, sink := range w.permanentSinks {
		w.deliver(ctx, sink, evt)
	}
	for _, sink := range w.resolve(evt) {
		w.deliver(ctx, sink, evt)
	}
}

func (w *EventFanout) resolve(evt event.Event) []contract.EventSink {
	switch evt.Scope {
	case event.ScopeRoom:
		return w.registry.SinksForRoom(evt.Room, "")
	case event.ScopeRoomExceptSender:
		return w.registry.SinksForRoom(evt.Room, evt.ExcludeConn)
	case event.ScopeAll:
		return w.registry.AllSinks()
	default:
		return nil
	}
}

// deliver consumes into one sink under a timeout. Sinks are buffered
// and non-blocking by contract, so the timeout only matters for a sink
// that misbehaves; the loss is logged and counted, never surfaced.
func (w *EventFanout) deliver(ctx context.Context, sink contract.EventSink, evt event.Event) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sinkCtx, evt); err != nil {
		w.log.Debug("Sink delivery dropped",
			"event", evt.Payload.EventName(), "room", evt.Room, "error", err)
		if w.dropped != nil {
			w.dropped()
		}
	}
}
