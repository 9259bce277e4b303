// Package events fans out notification events from the interaction
// engine to whoever renders them. It is in-process only: renderers
// subscribe with a channel, the engine publishes, slow subscribers are
// skipped rather than blocked.
package events

import (
	"log/slog"
	"sync"
)

// Kind classifies an event for the rendering layer.
type Kind string

const (
	// KindError reports a failed transport confirmation; the local
	// optimistic state may have drifted from the server.
	KindError Kind = "error"
	// KindNotFound reports an operation on an entity no longer present;
	// the renderer should fall back to the list view.
	KindNotFound Kind = "not_found"
	// KindInfo reports a non-failure notification.
	KindInfo Kind = "info"
)

// Event is a toast-style notification.
type Event struct {
	Kind     Kind
	EntityID int64
	Message  string
}

// Hub maintains the set of active subscribers and broadcasts events.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	logger      *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a new listener and returns its channel along with
// an unsubscribe function. The channel is buffered so the publisher is
// never blocked by a renderer.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber. A subscriber whose buffer is
// full misses the event; notifications are advisory, not state.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			h.logger.Warn("dropping event for slow subscriber",
				"kind", ev.Kind, "entityId", ev.EntityID)
		}
	}
}

// SubscriberCount reports the number of active listeners.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
