package ws

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "concord_events_published_total",
		Help: "Events handed to the fan-out hub.",
	})
	subscribersDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "concord_subscribers_dropped_total",
		Help: "Subscribers disconnected for not keeping up.",
	})
	subscribersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "concord_subscribers_active",
		Help: "Currently registered subscribers.",
	})
)

// subscriberBuffer is the per-subscriber event backlog. A subscriber whose
// buffer is full when an event arrives is dropped rather than allowed to
// back-pressure the publisher.
const subscriberBuffer = 32

// Event is the envelope delivered to subscribers.
type Event struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

// Subscriber receives events for the topics it registered for. Events
// arrives in publish order per topic. The channel is closed when the
// subscriber is dropped or the hub shuts down; a consumer that reconnects
// after a gap must reconcile through the history endpoint.
type Subscriber struct {
	topics []string
	ch     chan Event
	once   sync.Once
}

// Events returns the subscriber's event stream.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

func (s *Subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// Hub is the process-wide fan-out bus. It keys subscribers by topic and
// delivers each published event to every current subscriber of that topic.
// There is no durability: a disconnected subscriber misses events published
// while it was away.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscriber]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[*Subscriber]struct{}),
	}
}

// Subscribe registers a subscriber for the given topics.
func (h *Hub) Subscribe(topics ...string) *Subscriber {
	sub := &Subscriber{
		topics: topics,
		ch:     make(chan Event, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.close()
		return sub
	}
	for _, topic := range topics {
		if h.topics[topic] == nil {
			h.topics[topic] = make(map[*Subscriber]struct{})
		}
		h.topics[topic][sub] = struct{}{}
	}
	subscribersActive.Inc()
	return sub
}

// Unsubscribe removes the subscriber from all its topics and closes its
// event stream.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	h.remove(sub)
	h.mu.Unlock()
}

// remove must be called with the write lock held. It reports whether the
// subscriber was still registered.
func (h *Hub) remove(sub *Subscriber) bool {
	removed := false
	for _, topic := range sub.topics {
		if subs, ok := h.topics[topic]; ok {
			if _, ok := subs[sub]; ok {
				removed = true
			}
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	if removed {
		subscribersActive.Dec()
	}
	sub.close()
	return removed
}

// Publish delivers the payload to all current subscribers of the topic in
// publish order. The hand-off per subscriber is non-blocking: a subscriber
// that cannot keep up is dropped so the publisher never stalls.
func (h *Hub) Publish(topic string, payload any) {
	ev := Event{Topic: topic, Payload: payload}
	eventsPublished.Inc()

	h.mu.RLock()
	var slow []*Subscriber
	for sub := range h.topics[topic] {
		select {
		case sub.ch <- ev:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}
	h.mu.Lock()
	for _, sub := range slow {
		if h.remove(sub) {
			subscribersDropped.Inc()
		}
	}
	h.mu.Unlock()
}

// Close drops all subscribers and rejects future registrations. Called once
// on service shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	seen := make(map[*Subscriber]struct{})
	for _, subs := range h.topics {
		for sub := range subs {
			seen[sub] = struct{}{}
		}
	}
	for sub := range seen {
		sub.close()
	}
	subscribersActive.Sub(float64(len(seen)))
	h.topics = make(map[string]map[*Subscriber]struct{})
}
