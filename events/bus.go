package events

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Topics published by the order core.
const (
	TopicOrderCreated        = "order.created"
	TopicOrderUpdated        = "order.updated"
	TopicNotificationCreated = "admin.notification.created"
)

// Event is what subscribers receive. Payload is whatever the producer
// published, serialized only at the transport edge.
type Event struct {
	Name    string
	Payload any
}

// Bus is an in-process publish/subscribe fan-out. Delivery is at-most-once,
// best-effort: events published while nobody is subscribed are dropped, and a
// subscriber that cannot keep up loses events rather than blocking Publish.
// Construct one per process and inject it; there is no package-level instance.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan Event
	log    *logrus.Entry
}

const subscriberBuffer = 16

func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]map[int]chan Event),
		log:  logrus.WithField("component", "events"),
	}
}

// Subscribe registers interest in the given topics and returns a single
// receive channel plus a cancel func. Callers must defer cancel so the
// registration cannot outlive the connection that opened it. The channel is
// closed by cancel.
func (b *Bus) Subscribe(topics ...string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	for _, t := range topics {
		if b.subs[t] == nil {
			b.subs[t] = make(map[int]chan Event)
		}
		b.subs[t][id] = ch
	}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			for _, t := range topics {
				delete(b.subs[t], id)
			}
			close(ch)
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers the event to every current subscriber of the topic.
// Sends never block: a full subscriber buffer means that subscriber misses
// the event.
func (b *Bus) Publish(topic string, payload any) {
	ev := Event{Name: topic, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs[topic] {
		select {
		case ch <- ev:
		default:
			b.log.WithFields(logrus.Fields{"topic": topic, "subscriber": id}).
				Warn("subscriber buffer full, event dropped")
		}
	}
}
