// Package event provides a synchronous observer bus with named channels.
//
// UI layers subscribe to a channel and are invoked inline after each store
// mutation; a Subscription handle cancels the registration:
//
//	sub := event.Subscribe("store:update", func(payload interface{}) { render() })
//	defer sub.Cancel()
package event

import (
	"sync"
)

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

// Bus dispatches events to subscribed handlers. The zero value is not
// usable; construct with NewBus.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]Handler
}

// Subscription identifies a single registered handler on a Bus.
type Subscription struct {
	bus     *Bus
	channel string
	id      int
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{handlers: map[string]map[int]Handler{}}
}

// Subscribe registers a handler for the given channel and returns a
// Subscription used to cancel it.
func (b *Bus) Subscribe(channel string, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	if b.handlers[channel] == nil {
		b.handlers[channel] = map[int]Handler{}
	}
	b.handlers[channel][b.nextID] = handler
	return Subscription{bus: b, channel: channel, id: b.nextID}
}

// Cancel removes the handler. Safe to call more than once.
func (s Subscription) Cancel() {
	if s.bus == nil {
		return
	}
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	delete(s.bus.handlers[s.channel], s.id)
}

// Fire dispatches an event synchronously to all handlers on the channel.
// Handlers run in registration order.
func (b *Bus) Fire(channel string, payload interface{}) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.handlers[channel]))
	for id := range b.handlers[channel] {
		ids = append(ids, id)
	}
	// map order is random; dispatch by ascending id
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	hs := make([]Handler, 0, len(ids))
	for _, id := range ids {
		hs = append(hs, b.handlers[channel][id])
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(payload)
	}
}

// Flush removes all handlers (useful in tests).
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string]map[int]Handler{}
}

// ─── Package-level default bus ────────────────────────────────────────────────

var defaultBus = NewBus()

// Default returns the process-wide bus.
func Default() *Bus { return defaultBus }

// Subscribe registers a handler on the default bus.
func Subscribe(channel string, handler Handler) Subscription {
	return defaultBus.Subscribe(channel, handler)
}

// Fire dispatches on the default bus.
func Fire(channel string, payload interface{}) {
	defaultBus.Fire(channel, payload)
}

// Flush clears the default bus (useful in tests).
func Flush() {
	defaultBus.Flush()
}
