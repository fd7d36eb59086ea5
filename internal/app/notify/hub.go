// Package notify delivers best-effort events to the notification
// collaborator after a successful purchase or selection.
//
// Delivery is fire-and-forget and happens strictly after the core
// transaction commits: a dropped or delayed event can never corrupt
// ledger state.
package notify

import (
	"log"
	"sync"
	"time"
)

// Kind classifies a notification event.
type Kind string

const (
	KindPurchase  Kind = "purchase"
	KindSelection Kind = "selection"
)

// Event describes one completed purchase or selection.
type Event struct {
	Kind         Kind      `json:"kind"`
	UserID       string    `json:"user_id"`
	PostID       string    `json:"post_id"`
	CorrectionID string    `json:"correction_id,omitempty"`
	Tokens       int64     `json:"tokens"`
	At           time.Time `json:"at"`
}

// Hub fans events out to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	buffer int
}

// NewHub creates a hub with the given per-subscriber buffer size.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs:   make(map[int]chan Event),
		buffer: buffer,
	}
}

// Publish delivers the event to all subscribers without blocking.
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
			// Subscriber is slow; best-effort means we drop.
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.buffer)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// LogEvents consumes events and writes them to the process log until the
// channel closes. Intended to run in its own goroutine as the default
// notification sink.
func LogEvents(ch <-chan Event) {
	for e := range ch {
		log.Printf("[notify] %s user=%s post=%s tokens=%d", e.Kind, e.UserID, e.PostID, e.Tokens)
	}
}
