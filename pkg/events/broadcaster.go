// Package events bridges the in-process event bus onto a nanomsg PUB socket
// so external tooling can follow gateway activity. Frames are the event
// topic, a space, and the JSON-encoded event; SUB sockets can filter by
// topic prefix.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"

	// Register all transports (tcp, ipc, inproc, ws)
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/alice-platform/gateway-engine/pkg/logging"
	"github.com/alice-platform/gateway-engine/pkg/pubsub"
)

// Topics forwarded to the socket.
var broadcastTopics = []string{
	pubsub.TopicConnections,
	pubsub.TopicSyncs,
	pubsub.TopicTransforms,
	pubsub.TopicMeshes,
}

// Broadcaster forwards bus events to a mangos PUB socket.
type Broadcaster struct {
	bus    *pubsub.Bus
	addr   string
	logger logging.Logger

	sock   mangos.Socket
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// NewBroadcaster creates a broadcaster publishing on addr (any mangos
// transport URL, e.g. tcp://0.0.0.0:9081 or inproc://gateway-events).
func NewBroadcaster(bus *pubsub.Bus, addr string, logger logging.Logger) *Broadcaster {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Broadcaster{
		bus:    bus,
		addr:   addr,
		logger: logger.With(logging.Component("events")),
	}
}

// Start opens the PUB socket and begins forwarding. Idempotent start is not
// supported; call once.
func (b *Broadcaster) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return fmt.Errorf("broadcaster already running")
	}

	sock, err := pub.NewSocket()
	if err != nil {
		return fmt.Errorf("create pub socket: %w", err)
	}
	if err := sock.Listen(b.addr); err != nil {
		sock.Close()
		return fmt.Errorf("listen on %s: %w", b.addr, err)
	}
	b.sock = sock

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	for _, topic := range broadcastTopics {
		sub := b.bus.Subscribe(ctx, topic)
		if sub == nil {
			continue
		}
		b.wg.Add(1)
		go b.forward(sub)
	}

	b.running = true
	b.logger.Info("event broadcaster listening", logging.String("addr", b.addr))
	return nil
}

// forward drains one subscription onto the socket until it closes.
func (b *Broadcaster) forward(sub *pubsub.Subscription) {
	defer b.wg.Done()

	for evt := range sub.Channel() {
		frame, err := encodeFrame(evt)
		if err != nil {
			b.logger.Warn("drop unencodable event",
				logging.String("topic", evt.Topic), logging.Error(err))
			continue
		}
		if err := b.sock.Send(frame); err != nil {
			b.logger.Warn("send failed", logging.Error(err))
		}
	}
}

// Stop ends forwarding and closes the socket.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()
	if err := b.sock.Close(); err != nil {
		b.logger.Warn("close socket", logging.Error(err))
	}
	b.logger.Info("event broadcaster stopped")
}

// Running reports whether the broadcaster is forwarding.
func (b *Broadcaster) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// encodeFrame renders an event as "<topic> <json>".
func encodeFrame(evt pubsub.Event) ([]byte, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 0, len(evt.Topic)+1+len(body))
	frame = append(frame, evt.Topic...)
	frame = append(frame, ' ')
	frame = append(frame, body...)
	return frame, nil
}
