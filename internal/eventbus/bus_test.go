package eventbus

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	b := NewWithConfig(2, 16)

	var got atomic.Int32
	b.Subscribe(EventTypeCommand, func(e Event) {
		if e.Data["intent"] == "set_color" {
			got.Add(1)
		}
	})
	b.Subscribe(EventType("other"), func(Event) {
		t.Error("handler for another type should not receive command events")
	})

	for i := 0; i < 5; i++ {
		b.Publish(Event{Type: EventTypeCommand, Data: map[string]any{"intent": "set_color"}})
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	b.Close(ctx)

	if got.Load() != 5 {
		t.Errorf("delivered = %d, want 5", got.Load())
	}
}

func TestHandlerPanicDoesNotKillWorker(t *testing.T) {
	b := NewWithConfig(1, 4)

	var calls atomic.Int32
	b.Subscribe(EventTypeCommand, func(e Event) {
		calls.Add(1)
		if e.Data["boom"] == true {
			panic("boom")
		}
	})

	b.Publish(Event{Type: EventTypeCommand, Data: map[string]any{"boom": true}})
	b.Publish(Event{Type: EventTypeCommand, Data: map[string]any{}})

	b.Close(context.Background())

	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestPublishAfterClose(t *testing.T) {
	b := NewWithConfig(1, 1)
	b.Subscribe(EventTypeCommand, func(Event) {})
	b.Close(context.Background())
	b.Close(context.Background())

	// Must not panic.
	b.Publish(Event{Type: EventTypeCommand})

	var nilBus *Bus
	nilBus.Publish(Event{Type: EventTypeCommand})
}
