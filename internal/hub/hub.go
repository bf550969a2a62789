// Package hub fans runtime lifecycle events out to WebSocket and in-process
// subscribers, delivering a state snapshot on connect.
package hub

import (
	"sync"
	"time"

	"github.com/webpilot-ai/webpilot/internal/observability"
	"github.com/webpilot-ai/webpilot/pkg/models"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls this far behind starts losing events rather than blocking the
// producer.
const subscriberBuffer = 256

// SnapshotFunc produces the current task list and tool catalog. It is called
// under the hub lock so the snapshot and the subsequent live events are
// coherent: no event emitted after the snapshot is taken can be missed.
type SnapshotFunc func() (tasks []*models.Task, tools []models.ToolDefinition)

// Hub multiplexes events onto subscribers.
//
// Delivery is best-effort per subscriber: a full buffer drops the event for
// that subscriber only. Per-subscriber ordering matches publish order.
type Hub struct {
	logger   *observability.Logger
	metrics  *observability.Metrics
	snapshot SnapshotFunc

	mu   sync.Mutex
	subs map[*Subscriber]struct{}
}

// Subscriber is one registered event consumer.
type Subscriber struct {
	ch   chan models.Event
	once sync.Once
}

// Events returns the subscriber's receive channel. It is closed when the
// subscriber is removed from the hub.
func (s *Subscriber) Events() <-chan models.Event {
	return s.ch
}

// New creates a hub. snapshot may be nil until SetSnapshot is called.
func New(logger *observability.Logger, metrics *observability.Metrics) *Hub {
	return &Hub{
		logger:  logger,
		metrics: metrics,
		subs:    make(map[*Subscriber]struct{}),
	}
}

// SetSnapshot installs the snapshot source. Must be called before the first
// Subscribe.
func (h *Hub) SetSnapshot(fn SnapshotFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshot = fn
}

// Subscribe registers a consumer. The first event on its channel is a
// snapshot of all tasks and the tool catalog; live events follow in publish
// order.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan models.Event, subscriberBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.snapshot != nil {
		tasks, tools := h.snapshot()
		sub.ch <- models.Event{
			Version: 1,
			Type:    models.EventSnapshot,
			Time:    time.Now().UTC(),
			Payload: models.EventPayload{Tasks: tasks, Tools: tools},
		}
	}

	h.subs[sub] = struct{}{}
	if h.metrics != nil {
		h.metrics.Subscribers.Inc()
	}
	return sub
}

// Unsubscribe removes a consumer and closes its channel. Safe to call more
// than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	_, present := h.subs[sub]
	delete(h.subs, sub)
	h.mu.Unlock()

	if present && h.metrics != nil {
		h.metrics.Subscribers.Dec()
	}
	sub.once.Do(func() { close(sub.ch) })
}

// Publish delivers the event to every subscriber, dropping it for any whose
// buffer is full.
func (h *Hub) Publish(event models.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case sub.ch <- event:
		default:
			if h.metrics != nil {
				h.metrics.DroppedEvents.Inc()
			}
		}
	}
}

// SubscriberCount returns the number of registered subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
