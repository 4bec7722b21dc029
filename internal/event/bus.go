package event

import (
	"log/slog"
	"runtime/debug"
	"strconv"
	"sync"
)

// Handler receives a published event. Handlers run synchronously on the
// publisher's goroutine.
type Handler func(Event)

// topicAll is the internal topic wildcard handlers are filed under.
const topicAll = "*"

// listener is one registered handler on one topic.
type listener struct {
	id string
	fn Handler
}

// Bus is a synchronous in-process pub-sub bus. The orchestrator
// publishes lifecycle events onto it and surfaces (dashboard, log
// sinks) subscribe without depending on the orchestrator directly.
type Bus struct {
	mu      sync.RWMutex
	byTopic map[string][]listener
	topicOf map[string]string // listener id -> topic, for unsubscribe
	lastID  uint64
}

func NewBus() *Bus {
	return &Bus{
		byTopic: make(map[string][]listener),
		topicOf: make(map[string]string),
	}
}

// Subscribe registers fn for events of the given type and returns the
// listener id used to unsubscribe.
func (b *Bus) Subscribe(eventType string, fn Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastID++
	id := "sub-" + strconv.FormatUint(b.lastID, 10)
	b.byTopic[eventType] = append(b.byTopic[eventType], listener{id: id, fn: fn})
	b.topicOf[id] = eventType
	return id
}

// SubscribeAll registers fn for every published event.
func (b *Bus) SubscribeAll(fn Handler) string {
	return b.Subscribe(topicAll, fn)
}

// Unsubscribe removes the listener with the given id. It reports
// whether the id was registered.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	topic, ok := b.topicOf[id]
	if !ok {
		return false
	}
	delete(b.topicOf, id)

	kept := b.byTopic[topic][:0]
	for _, l := range b.byTopic[topic] {
		if l.id != id {
			kept = append(kept, l)
		}
	}
	b.byTopic[topic] = kept
	return true
}

// Publish delivers e to every listener on its type, then to every
// wildcard listener, each group in registration order. Delivery is
// synchronous: Publish returns after the last handler does. A panicking
// handler is logged and skipped; the remaining handlers still run.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	typed := b.byTopic[e.EventType()]
	wild := b.byTopic[topicAll]
	queue := make([]listener, 0, len(typed)+len(wild))
	queue = append(queue, typed...)
	queue = append(queue, wild...)
	b.mu.RUnlock()

	for _, l := range queue {
		deliver(l.fn, e)
	}
}

// deliver runs one handler, containing any panic so a broken subscriber
// cannot starve the others.
func deliver(fn Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked",
				"event_type", e.EventType(),
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn(e)
}

// Clear drops every listener. Used between tests.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byTopic = make(map[string][]listener)
	b.topicOf = make(map[string]string)
}

// SubscriptionCount returns the number of registered listeners across
// all topics.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topicOf)
}
