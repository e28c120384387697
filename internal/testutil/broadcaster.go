package testutil

import (
	"context"
	"sync"
)

// RecordedEvent is one captured broadcast.
type RecordedEvent struct {
	Channel string
	Event   string
	Payload any
}

// FakeBroadcaster records published events for assertions.
type FakeBroadcaster struct {
	mu     sync.Mutex
	events []RecordedEvent
}

func NewFakeBroadcaster() *FakeBroadcaster {
	return &FakeBroadcaster{}
}

func (b *FakeBroadcaster) Publish(ctx context.Context, channel, event string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, RecordedEvent{Channel: channel, Event: event, Payload: payload})
	return nil
}

func (b *FakeBroadcaster) Events() []RecordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedEvent, len(b.events))
	copy(out, b.events)
	return out
}

// EventNames returns the event names in publish order.
func (b *FakeBroadcaster) EventNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, len(b.events))
	for i, e := range b.events {
		names[i] = e.Event
	}
	return names
}
