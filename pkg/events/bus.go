// Package events pkg/events/bus.go
package events

import (
	"log"
	"sync"
)

// Handler processes one event. Handlers run synchronously on the
// publishing goroutine and must not block; slow work belongs on the
// handler's own queue.
type Handler func(Event)

type subscription struct {
	name string
	fn   Handler
}

// Bus is the in-process publish/subscribe hub. One instance lives for the
// whole process. Publish order is subscription order, exact-type handlers
// before wildcard handlers, and a panicking handler never prevents its
// siblings from running.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string][]subscription),
	}
}

// Subscribe registers fn for eventType under name. Registering the same
// (eventType, name) pair again replaces the handler instead of adding a
// second one, so a handler fires exactly once per publish no matter how
// often it is subscribed.
func (b *Bus) Subscribe(eventType, name string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs[eventType] {
		if sub.name == name {
			b.subs[eventType][i].fn = fn
			return
		}
	}

	b.subs[eventType] = append(b.subs[eventType], subscription{name: name, fn: fn})
}

// Unsubscribe removes the named handler for eventType. Unknown pairs are
// a no-op.
func (b *Bus) Unsubscribe(eventType, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[eventType]
	for i, sub := range subs {
		if sub.name == name {
			b.subs[eventType] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers evt to every exact-type handler, then every wildcard
// handler, synchronously and in registration order.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()

	handlers := make([]subscription, 0, len(b.subs[evt.Type])+len(b.subs[TypeWildcard]))
	handlers = append(handlers, b.subs[evt.Type]...)

	if evt.Type != TypeWildcard {
		handlers = append(handlers, b.subs[TypeWildcard]...)
	}

	b.mu.RUnlock()

	for _, sub := range handlers {
		b.invoke(sub, evt)
	}
}

func (b *Bus) invoke(sub subscription, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Event handler %s panicked on %s: %v", sub.name, evt.Type, r)
		}
	}()

	sub.fn(evt)
}
