package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type pingEvent struct {
	BaseEvent
}

func (pingEvent) EventName() string { return "test.ping" }

func TestPublishRunsAllHandlers(t *testing.T) {
	bus := NewInMemoryBus(nil)
	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error {
			calls.Add(1)
			return nil
		}))
	}
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error {
		calls.Add(1)
		return errors.New("boom")
	}))

	bus.Publish(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()

	if got := calls.Load(); got != 4 {
		t.Fatalf("handler calls = %d, want 4", got)
	}
}

func TestPublishSurvivesCancelledContext(t *testing.T) {
	bus := NewInMemoryBus(nil)
	var sawErr atomic.Bool
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error {
		sawErr.Store(ctx.Err() != nil)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, pingEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()

	if sawErr.Load() {
		t.Fatalf("async handler received a cancelled context")
	}
}

func TestPublishSyncJoinsErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)
	first := errors.New("first")
	second := errors.New("second")
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error { return first }))
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error { return nil }))
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error { return second }))

	err := bus.PublishSync(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatalf("expected both handler errors, got %v", err)
	}
	if err := bus.PublishSync(context.Background(), namedEvent("test.none")); err != nil {
		t.Fatalf("no handlers should mean no error, got %v", err)
	}
}

type namedEvent string

func (e namedEvent) EventName() string { return string(e) }
func (namedEvent) OccurredAt() time.Time { return time.Time{} }
