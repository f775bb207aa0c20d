package sink

import (
	"chat-hub/domain/event"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectionSink_BuffersEvents(t *testing.T) {
	req := require.New(t)
	connSink := NewConnectionSink(2)

	evt := event.Event{Scope: event.ScopeAll, Payload: event.UserListUpdated{Usernames: []string{"alice"}}}

	req.NoError(connSink.Consume(context.Background(), evt))
	req.Len(connSink.Events, 1)
	req.Equal(evt, <-connSink.Events)
}

func TestConnectionSink_FullBufferDropsSilently(t *testing.T) {
	req := require.New(t)
	connSink := NewConnectionSink(1)

	first := event.Event{Scope: event.ScopeAll, Payload: event.UserListUpdated{Usernames: []string{"alice"}}}
	second := event.Event{Scope: event.ScopeAll, Payload: event.UserListUpdated{Usernames: []string{"bob"}}}

	// Given a full buffer
	req.NoError(connSink.Consume(context.Background(), first))

	// When another event arrives, Consume neither blocks nor errors
	req.NoError(connSink.Consume(context.Background(), second))

	// Then only the first event survived
	req.Len(connSink.Events, 1)
	req.Equal(first, <-connSink.Events)
}

func TestConnectionSink_CanceledContextIsReported(t *testing.T) {
	req := require.New(t)
	connSink := NewConnectionSink(1)
	req.NoError(connSink.Consume(context.Background(),
		event.Event{Scope: event.ScopeAll, Payload: event.UserListUpdated{}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A canceled context on a full buffer may surface the cancellation;
	// either way the call never blocks.
	_ = connSink.Consume(ctx, event.Event{Scope: event.ScopeAll, Payload: event.UserListUpdated{}})
	req.Len(connSink.Events, 1)
}
