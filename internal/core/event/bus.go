package event

import (
	"reflect"
	"sync"
)

// Bus queues diagnostics raised during a batch and hands them to subscribers
// on Flush, in emit order. Engines emit while they run; the CLI or UI drains
// once the batch is done. A nil *Bus drops everything.
type Bus struct {
	mu       sync.Mutex
	pending  []any
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]func(any))}
}

// Emit queues an event for the next Flush.
func Emit[T any](b *Bus, event T) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.pending = append(b.pending, event)
	b.mu.Unlock()
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// Pending returns the number of queued events.
func (b *Bus) Pending() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Flush delivers every queued event and empties the queue. Events emitted by
// handlers wait for the next Flush. It returns the number of events drained.
func (b *Bus) Flush() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	events := b.pending
	b.pending = nil
	handlers := make(map[reflect.Type][]func(any), len(b.handlers))
	for t, hs := range b.handlers {
		handlers[t] = hs
	}
	b.mu.Unlock()

	for _, ev := range events {
		for _, h := range handlers[reflect.TypeOf(ev)] {
			h(ev)
		}
	}
	return len(events)
}
