// Package realtime is the fan-out layer that pushes repository and
// analytics mutations to every live observer. The channel carries
// change-notification signals, not diffs: on (re)connection a subscriber
// re-fetches full state.
package realtime

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Topics, one logical channel per entity type.
const (
	TopicReports  = "hazard_reports"
	TopicSocial   = "social_analytics"
	TopicSessions = "sessions"
)

// Notification tells a subscriber that something on a topic changed.
type Notification struct {
	Topic    string    `json:"topic"`
	Event    string    `json:"event"` // "created" | "status_changed" | "login" | "logout" | ...
	EntityID string    `json:"entity_id,omitempty"`
	At       time.Time `json:"at"`
}

// Publisher is the write side of the fan-out, implemented by Hub and Bridge.
type Publisher interface {
	Publish(ctx context.Context, n Notification)
}

// subscriber buffer size. A full buffer means the subscriber already has
// pending wakeups, so dropping further signals keeps at-least-once intact.
const subBuffer = 16

// Hub is the in-process publish/subscribe hub. Per-subscriber delivery
// order matches the order notifications were published.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]*Subscription
	nextID uint64
	logger *zap.SugaredLogger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		subs:   make(map[string]map[uint64]*Subscription),
		logger: logger,
	}
}

// Subscribe registers an observer for a topic. The returned handle owns
// the delivery channel; Unsubscribe releases it and is idempotent.
func (h *Hub) Subscribe(topic string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		hub:   h,
		topic: topic,
		id:    h.nextID,
		ch:    make(chan Notification, subBuffer),
	}
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[uint64]*Subscription)
	}
	h.subs[topic][sub.id] = sub
	return sub
}

// Publish delivers n to every live subscriber of its topic. Slow
// subscribers coalesce: the signal is dropped only when earlier wakeups
// are still queued for them.
func (h *Hub) Publish(_ context.Context, n Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs[n.Topic] {
		select {
		case sub.ch <- n:
		default:
			h.logger.Debugw("Subscriber buffer full, coalescing notification",
				"topic", n.Topic, "subscriber", sub.id)
		}
	}
}

// SubscriberCount returns the number of live subscriptions on a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

func (h *Hub) remove(topic string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subs[topic]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(h.subs, topic)
		}
	}
}

// Subscription is a handle to one observer's feed of change notifications.
type Subscription struct {
	hub   *Hub
	topic string
	id    uint64
	ch    chan Notification
	once  sync.Once
}

// C returns the delivery channel. It is closed by Unsubscribe.
func (s *Subscription) C() <-chan Notification {
	return s.ch
}

// Unsubscribe releases the subscription synchronously. Safe to call more
// than once; no notifications are delivered after it returns.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.remove(s.topic, s.id)
		close(s.ch)
	})
}
