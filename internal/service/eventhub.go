package service

import (
	"sync"

	"userhub/internal/event"
)

// FeedItem is one event delivered to feed subscribers.
type FeedItem struct {
	Channel string          `json:"channel"`
	Event   *event.Envelope `json:"event"`
}

// EventHub fans events from the Redis subscriber out to websocket clients.
// Slow clients drop events rather than block the subscriber.
type EventHub struct {
	mu      sync.RWMutex
	clients map[chan FeedItem]struct{}
	buffer  int
}

func NewEventHub(buffer int) *EventHub {
	if buffer <= 0 {
		buffer = 64
	}
	return &EventHub{clients: make(map[chan FeedItem]struct{}), buffer: buffer}
}

// Subscribe registers a client. Call the returned func to unsubscribe.
func (h *EventHub) Subscribe() (<-chan FeedItem, func()) {
	ch := make(chan FeedItem, h.buffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Broadcast matches messaging.Subscriber's callback signature.
func (h *EventHub) Broadcast(channel string, e *event.Envelope) {
	item := FeedItem{Channel: channel, Event: e}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- item:
		default:
		}
	}
}

// Clients returns the number of connected subscribers.
func (h *EventHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
