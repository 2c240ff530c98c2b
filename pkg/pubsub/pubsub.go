// Package pubsub is the in-process event bus for gateway activity. Handlers
// publish an Event per successful operation; subscribers (the network
// broadcaster, tests, future websocket feeds) consume them per topic.
package pubsub

import (
	"context"
	"sync"
	"time"
)

// Topics carried on the bus.
const (
	TopicConnections = "connections"
	TopicSyncs       = "syncs"
	TopicTransforms  = "transforms"
	TopicMeshes      = "meshes"
)

// Event is one gateway occurrence: a connection opened or closed, a sync
// recorded, a transform served, a mesh built.
type Event struct {
	Topic string    `json:"topic"`
	Kind  string    `json:"kind"`
	At    time.Time `json:"at"`
	Data  any       `json:"data,omitempty"`
}

// Bus fans events out to per-topic subscribers. Publishing never blocks: a
// subscriber that falls behind its buffer misses events rather than stalling
// the request path.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscription]bool

	shutdownMu sync.Mutex
	shutdown   chan struct{}
	isShutdown bool
}

// Subscription is one subscriber's view of a topic.
type Subscription struct {
	topic     string
	channel   chan Event
	bus       *Bus
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewBus creates an event bus with no subscribers.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string]map[*Subscription]bool),
		shutdown:    make(chan struct{}),
	}
}

// Subscribe registers for events on a topic. The subscription ends when ctx
// is cancelled, Unsubscribe is called, or the bus shuts down. Returns nil
// after shutdown.
func (b *Bus) Subscribe(ctx context.Context, topic string) *Subscription {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return nil
	}
	b.shutdownMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		topic:   topic,
		channel: make(chan Event, 64),
		bus:     b,
		cancel:  cancel,
	}

	b.mu.Lock()
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[*Subscription]bool)
	}
	b.subscribers[topic][sub] = true
	b.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-b.shutdown:
			sub.close()
		}
	}()

	return sub
}

// Publish delivers the event to every subscriber of its topic. Subscribers
// are snapshotted under the lock; sends happen outside it.
func (b *Bus) Publish(evt Event) {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.shutdownMu.Unlock()

	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	b.mu.RLock()
	topicSubs := b.subscribers[evt.Topic]
	if len(topicSubs) == 0 {
		b.mu.RUnlock()
		return
	}
	subs := make([]*Subscription, 0, len(topicSubs))
	for sub := range topicSubs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.channel <- evt:
		default:
			// Subscriber buffer full; drop rather than block the
			// request path.
		}
	}
}

// SubscriberCount returns the number of subscribers on a topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

// Shutdown closes every subscription. Publish and Subscribe become no-ops.
func (b *Bus) Shutdown() {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.isShutdown = true
	b.shutdownMu.Unlock()

	close(b.shutdown)

	b.mu.Lock()
	for topic := range b.subscribers {
		for sub := range b.subscribers[topic] {
			sub.close()
		}
		delete(b.subscribers, topic)
	}
	b.mu.Unlock()
}

// Channel returns the subscription's event channel. It closes when the
// subscription ends.
func (s *Subscription) Channel() <-chan Event {
	return s.channel
}

// Unsubscribe removes the subscription and closes its channel.
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.bus.mu.Lock()
	if s.bus.subscribers[s.topic] != nil {
		delete(s.bus.subscribers[s.topic], s)
		if len(s.bus.subscribers[s.topic]) == 0 {
			delete(s.bus.subscribers, s.topic)
		}
	}
	s.bus.mu.Unlock()

	s.close()
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
