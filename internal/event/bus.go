// Package event is the in-process publish/subscribe bus that carries settings
// and theme changes from the write path to live listeners.
package event

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is one message on the bus. The payload type depends on the topic.
type Event struct {
	Topic     string
	Source    string
	Timestamp time.Time
	Payload   any
}

// Handler processes one event.
type Handler func(ctx context.Context, e Event)

// Publisher is the write side of the bus.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Bus delivers events to topic subscribers in the publisher's goroutine and in
// subscription order. Subscribers that do slow work hand it off themselves. A
// panicking handler is logged and isolated.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
	nextID   uint64
	logger   *zap.Logger
}

type subscription struct {
	id      uint64
	handler Handler
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[string][]subscription),
		logger:   logger,
	}
}

// Publish delivers e synchronously. A zero Timestamp is set to now.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	for _, s := range b.matching(e.Topic) {
		b.deliver(ctx, s.handler, e)
	}
	return nil
}

// Subscribe registers handler for topic and returns its cancel function.
func (b *Bus) Subscribe(topic string, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[topic] = append(b.handlers[topic], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.handlers[topic] = without(b.handlers[topic], id)
	}
}

// matching snapshots the subscribers for topic.
func (b *Bus) matching(topic string) []subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]subscription(nil), b.handlers[topic]...)
}

func (b *Bus) deliver(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", e.Topic),
				zap.String("source", e.Source),
				zap.Any("panic", r),
			)
		}
	}()
	h(ctx, e)
}

func without(subs []subscription, id uint64) []subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}
