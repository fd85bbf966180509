package events

import "sync"

// Bus is the in-process publish/subscribe channel between the gateway
// callbacks and the view layer. Delivery is synchronous on the publishing
// goroutine, in registration order. There is no cross-process delivery.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string][]subscriber
}

type subscriber struct {
	id int
	fn func(Event)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscriber)}
}

// Subscribe registers a handler for one topic and returns its
// unsubscribe function. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(topic string, fn func(Event)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		handlers := b.subs[topic]
		for i, s := range handlers {
			if s.id == id {
				b.subs[topic] = append(handlers[:i:i], handlers[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to every handler registered for its topic,
// in the order they subscribed, before returning.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	handlers := make([]subscriber, len(b.subs[ev.Topic()]))
	copy(handlers, b.subs[ev.Topic()])
	b.mu.Unlock()

	for _, s := range handlers {
		s.fn(ev)
	}
}
