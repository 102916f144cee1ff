package channels

import (
	"sync"
	"sync/atomic"
)

// Hub publishes messages to a changing set of subscribers without ever
// blocking the publisher. A subscriber that falls behind loses messages
// instead of slowing everyone else down.
type Hub[T any] struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscription[T]
	nextID uint64
	closed bool
}

type subscription[T any] struct {
	ch      chan T
	dropped atomic.Int64
}

// NewHub creates an empty hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[uint64]*subscription[T])}
}

// Subscribe registers a new subscriber with the given buffer size. The
// returned cancel func unsubscribes and closes the channel; it is safe to
// call more than once.
func (h *Hub[T]) Subscribe(buffer int) (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscription[T]{ch: make(chan T, max(1, buffer))}
	if h.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}

	h.nextID++
	id := h.nextID
	h.subs[id] = sub

	var once sync.Once

	return sub.ch, func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub[T]) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(sub.ch)
	}
}

// Publish delivers msg to every subscriber that has room for it and
// returns how many received it.
func (h *Hub[T]) Publish(msg T) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0

	for _, sub := range h.subs {
		if err := TrySend(sub.ch, msg); err != nil {
			sub.dropped.Add(1)
			continue
		}

		delivered++
	}

	return delivered
}

// Len returns the number of subscribers.
func (h *Hub[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs)
}

// Dropped returns the total number of messages dropped across current
// subscribers.
func (h *Hub[T]) Dropped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var total int64
	for _, sub := range h.subs {
		total += sub.dropped.Load()
	}

	return total
}

// Close unsubscribes everyone. Later subscribers get a closed channel.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.closed = true

	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}
