package workers

import (
	"chat-hub/contract"
	"chat-hub/domain/event"
	"chat-hub/mocks"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventFanout_RoomScopeDeliversToRoomAndPermanentSinks(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	permanentSink := mocks.NewMockEventSink(ctrl)
	roomSink := mocks.NewMockEventSink(ctrl)
	roomSinks := []contract.EventSink{roomSink, roomSink}

	fanout := NewEventFanout(log, mockRegistry, make(chan event.Event), time.Second, permanentSink)

	evt := event.Event{
		Scope:   event.ScopeRoom,
		Room:    "room1",
		Payload: event.UserTyping{Room: "room1", UserID: "alice", IsTyping: true},
	}

	// Given two room members and one permanent sink
	mockRegistry.EXPECT().SinksForRoom("room1", "").Return(roomSinks).Times(1)
	permanentSink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)
	roomSink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(2)

	// When the event is fanned out
	fanout.Fanout(context.Background(), evt)

	// Then ctrl.Finish verifies every delivery happened exactly once
}

func TestEventFanout_ExceptSenderScopePassesExclusion(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	roomSink := mocks.NewMockEventSink(ctrl)

	fanout := NewEventFanout(log, mockRegistry, make(chan event.Event), time.Second)

	evt := event.Event{
		Scope:       event.ScopeRoomExceptSender,
		Room:        "room1",
		ExcludeConn: "conn-42",
		Payload:     event.UserTyping{Room: "room1", UserID: "alice", IsTyping: true},
	}

	// Then the registry receives the sender exclusion
	mockRegistry.EXPECT().SinksForRoom("room1", "conn-42").
		Return([]contract.EventSink{roomSink}).Times(1)
	roomSink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	fanout.Fanout(context.Background(), evt)
}

func TestEventFanout_AllScopeUsesEverySink(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	sink := mocks.NewMockEventSink(ctrl)

	fanout := NewEventFanout(log, mockRegistry, make(chan event.Event), time.Second)

	evt := event.Event{
		Scope:   event.ScopeAll,
		Payload: event.UserListUpdated{Usernames: []string{"alice"}},
	}

	mockRegistry.EXPECT().AllSinks().Return([]contract.EventSink{sink, sink}).Times(1)
	sink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(2)

	fanout.Fanout(context.Background(), evt)
}

func TestEventFanout_FailedSinkIsCountedAndSkipped(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	failingSink := mocks.NewMockEventSink(ctrl)
	healthySink := mocks.NewMockEventSink(ctrl)

	fanout := NewEventFanout(log, mockRegistry, make(chan event.Event), time.Second)
	dropped := 0
	fanout.OnDrop(func() { dropped++ })

	evt := event.Event{
		Scope:   event.ScopeRoom,
		Room:    "room1",
		Payload: event.UserTyping{Room: "room1", UserID: "alice", IsTyping: true},
	}

	// Given the first sink fails and the second succeeds
	mockRegistry.EXPECT().SinksForRoom("room1", "").
		Return([]contract.EventSink{failingSink, healthySink}).Times(1)
	failingSink.EXPECT().Consume(gomock.Any(), evt).
		Return(fmt.Errorf("buffer gone")).Times(1)
	healthySink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	// When the event is fanned out
	fanout.Fanout(context.Background(), evt)

	// Then the failure was counted and did not stop delivery
	req.Equal(1, dropped)
}

func TestEventFanout_SinkTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	slowSink := mocks.NewMockEventSink(ctrl)

	sinkTimeout := 20 * time.Millisecond
	fanout := NewEventFanout(log, mockRegistry, make(chan event.Event), sinkTimeout)
	dropped := 0
	fanout.OnDrop(func() { dropped++ })

	evt := event.Event{
		Scope:   event.ScopeRoom,
		Room:    "room1",
		Payload: event.UserTyping{Room: "room1", UserID: "alice", IsTyping: true},
	}

	// Given a sink that only returns when its context expires
	mockRegistry.EXPECT().SinksForRoom("room1", "").
		Return([]contract.EventSink{slowSink}).Times(1)
	slowSink.EXPECT().Consume(gomock.Any(), evt).
		DoAndReturn(func(ctx context.Context, e event.Event) error {
			<-ctx.Done()     // Waiting for timeout to trigger cancellation
			return ctx.Err() // Sending back "context deadline exceeded"
		}).Times(1)

	// When the event is fanned out
	fanout.Fanout(context.Background(), evt)

	// Then the slow sink was cut off and counted as a drop
	req.Equal(1, dropped)
}

func TestEventFanout_RunDrainsChannelUntilCancel(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	sink := mocks.NewMockEventSink(ctrl)

	events := make(chan event.Event, 4)
	fanout := NewEventFanout(log, mockRegistry, events, time.Second)

	consumed := make(chan struct{}, 4)
	mockRegistry.EXPECT().AllSinks().Return([]contract.EventSink{sink}).Times(2)
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e event.Event) error {
			consumed <- struct{}{}
			return nil
		}).Times(2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = fanout.Run(ctx)
		close(done)
	}()

	// When two events enter the channel
	events <- event.Event{Scope: event.ScopeAll, Payload: event.UserListUpdated{}}
	events <- event.Event{Scope: event.ScopeAll, Payload: event.UserListUpdated{}}

	for i := 0; i < 2; i++ {
		select {
		case <-consumed:
		case <-time.After(time.Second):
			req.Fail("Event was not fanned out in time")
		}
	}

	// Then cancellation stops the worker cleanly
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Fanout worker did not stop on cancel")
	}
}
