package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted during tick N are
// delivered when the dispatch system swaps buffers at the start of tick N+1,
// so handlers never run in the middle of the operation that produced them.
type Bus struct {
	mu       sync.Mutex
	front    []queued
	back     []queued
	handlers map[reflect.Type][]func(any)
}

type queued struct {
	key reflect.Type
	ev  any
}

func NewBus() *Bus {
	return &Bus{
		front:    make([]queued, 0, 32),
		back:     make([]queued, 0, 32),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

func keyOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer. Emission order is preserved
// across event types.
func Emit[T any](b *Bus, ev T) {
	b.mu.Lock()
	b.back = append(b.back, queued{key: keyOf[T](), ev: ev})
	b.mu.Unlock()
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := keyOf[T]()
	b.handlers[k] = append(b.handlers[k], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers rotates back to front and clears the new back buffer.
func (b *Bus) SwapBuffers() {
	b.mu.Lock()
	b.front, b.back = b.back, b.front[:0]
	b.mu.Unlock()
}

// DispatchAll delivers every front-buffer event to its handlers and
// returns the number of events delivered. Events emitted by handlers land
// in the back buffer and wait for the next swap.
func (b *Bus) DispatchAll() int {
	b.mu.Lock()
	events := b.front
	b.front = nil
	b.mu.Unlock()

	for _, q := range events {
		b.mu.Lock()
		hs := b.handlers[q.key]
		b.mu.Unlock()
		for _, h := range hs {
			h(q.ev)
		}
	}

	b.mu.Lock()
	if b.front == nil {
		b.front = events[:0]
	}
	b.mu.Unlock()
	return len(events)
}

// Flush swaps and dispatches in one step.
func (b *Bus) Flush() int {
	b.SwapBuffers()
	return b.DispatchAll()
}

// Pending returns the number of events waiting for the next swap.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.back)
}
