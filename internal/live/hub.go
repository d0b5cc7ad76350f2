// Package live fans out collection change events to subscribers such as admin SSE streams.
package live

import (
	"sync"
	"sync/atomic"
	"time"
)

// Change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent describes one write to a collection.
type ChangeEvent struct {
	Collection string      `json:"collection"`
	Action     string      `json:"action"`
	ID         string      `json:"id"`
	Data       interface{} `json:"data,omitempty"`
	At         time.Time   `json:"at"`
}

// Publisher is the write side of the hub, used by services after a successful write.
type Publisher interface {
	Publish(event ChangeEvent)
}

const subscriberBuffer = 32

type subscriber struct {
	collection string
	ch         chan ChangeEvent
}

// Hub is an in-process broadcaster. A subscriber whose buffer is full misses events
// instead of blocking the writer.
type Hub struct {
	mu      sync.RWMutex
	nextID  uint64
	subs    map[uint64]*subscriber
	dropped atomic.Uint64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*subscriber)}
}

// Subscribe registers interest in a collection ("" for all collections). The returned
// function removes the subscription and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(collection string) (<-chan ChangeEvent, func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	sub := &subscriber{collection: collection, ch: make(chan ChangeEvent, subscriberBuffer)}
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, unsubscribe
}

// Publish delivers the event to every matching subscriber without blocking.
func (h *Hub) Publish(event ChangeEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.collection != "" && sub.collection != event.Collection {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber was slow.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(ChangeEvent) {}
