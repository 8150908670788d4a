package pubsub

import (
	"sync"

	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
)

// MockNATSPubSub is an in-memory upstream that keeps a bounded history of
// published events for replay
type MockNATSPubSub struct {
	local       *fanout
	mu          sync.RWMutex
	history     []Event
	maxMessages int
}

// NewMockNATSPubSub creates a mock upstream retaining up to 1000 events
func NewMockNATSPubSub() *MockNATSPubSub {
	logger.Info("Using mock NATS pub/sub")
	return &MockNATSPubSub{local: newFanout("mock-nats", 100), maxMessages: 1000}
}

// Publish records the event and delivers it to subscribers
func (p *MockNATSPubSub) Publish(event Event) {
	p.mu.Lock()
	p.history = append(p.history, event)
	if len(p.history) > p.maxMessages {
		p.history = p.history[len(p.history)-p.maxMessages:]
	}
	p.mu.Unlock()

	p.local.broadcast(event)
}

func (p *MockNATSPubSub) Subscribe() chan Event {
	return p.local.subscribe()
}

func (p *MockNATSPubSub) Unsubscribe(ch chan Event) {
	p.local.unsubscribe(ch)
}

// Replay sends up to count of the most recent events to ch, oldest first
func (p *MockNATSPubSub) Replay(ch chan Event, count int) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	start := max(len(p.history)-count, 0)
	for _, event := range p.history[start:] {
		select {
		case ch <- event:
		default:
			logger.Warn("Mock NATS: channel full during replay, skipping event")
		}
	}
}

// History returns a copy of the retained events
func (p *MockNATSPubSub) History() []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Event, len(p.history))
	copy(out, p.history)
	return out
}

// SubscriberCount returns the number of active subscribers
func (p *MockNATSPubSub) SubscriberCount() int {
	return p.local.count()
}

// Close closes all subscriptions
func (p *MockNATSPubSub) Close() {
	p.local.closeAll()
}
