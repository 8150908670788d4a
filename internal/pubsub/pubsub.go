package pubsub

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
)

// Event types published by the session service
const (
	EventPick        = "draft:pick"
	EventUndo        = "draft:undo"
	EventReset       = "draft:reset"
	EventUserTeam    = "draft:team"
	EventSession     = "session:created"
	EventProjections = "players:projections"
)

// Event represents a pubsub event
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	SessionID string         `json:"sessionId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	TS        int64          `json:"ts"`
}

// NewEvent stamps an event with an id and the current time in milliseconds
func NewEvent(eventType, sessionID string, payload map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		Payload:   payload,
		TS:        time.Now().UnixMilli(),
	}
}

// Upstream is a cross-instance event transport (NATS, Redis streams)
type Upstream interface {
	Publish(Event)
	Subscribe() chan Event
	Unsubscribe(chan Event)
	Close()
}

// fanout delivers events to in-process subscriber channels. Sends never
// block; a full subscriber misses the event.
type fanout struct {
	mu          sync.RWMutex
	subscribers []chan Event
	buffer      int
	name        string
}

func newFanout(name string, buffer int) *fanout {
	return &fanout{subscribers: []chan Event{}, buffer: buffer, name: name}
}

func (f *fanout) subscribe() chan Event {
	ch := make(chan Event, f.buffer)
	f.mu.Lock()
	f.subscribers = append(f.subscribers, ch)
	n := len(f.subscribers)
	f.mu.Unlock()
	logger.Debug("New subscriber added", "transport", f.name, "total_subscribers", n)
	return ch
}

func (f *fanout) unsubscribe(ch chan Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, sub := range f.subscribers {
		if sub == ch {
			close(ch)
			f.subscribers = append(f.subscribers[:i], f.subscribers[i+1:]...)
			logger.Debug("Subscriber removed", "transport", f.name, "remaining_subscribers", len(f.subscribers))
			return
		}
	}
}

func (f *fanout) broadcast(event Event) {
	// Sends are non-blocking, so holding the read lock keeps unsubscribe from
	// closing a channel mid-send
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, ch := range f.subscribers {
		select {
		case ch <- event:
		default:
			logger.Warn("Skipping slow subscriber", "transport", f.name, "event_type", event.Type)
		}
	}
}

func (f *fanout) count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

func (f *fanout) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subscribers {
		close(sub)
	}
	f.subscribers = nil
}

// PubSub is the in-process event bus handlers subscribe to
type PubSub struct {
	local    *fanout
	upstream Upstream
}

// New creates a local-only PubSub
func New() *PubSub {
	return &PubSub{local: newFanout("local", 10)}
}

// NewWithUpstream creates a PubSub bridged to an upstream. Publish sends to
// the upstream, which broadcasts back to every instance including this one.
func NewWithUpstream(upstream Upstream) *PubSub {
	ps := &PubSub{local: newFanout("local", 10), upstream: upstream}

	ch := upstream.Subscribe()
	go func() {
		for event := range ch {
			logger.Debug("Forwarding upstream event", "type", event.Type, "session_id", event.SessionID)
			ps.local.broadcast(event)
		}
		logger.Debug("Upstream channel closed")
	}()
	return ps
}

// Subscribe returns a channel receiving every event
func (ps *PubSub) Subscribe() chan Event {
	return ps.local.subscribe()
}

// Unsubscribe removes and closes a subscriber channel
func (ps *PubSub) Unsubscribe(ch chan Event) {
	ps.local.unsubscribe(ch)
}

// Publish sends an event to the upstream if one is configured, otherwise to
// local subscribers directly
func (ps *PubSub) Publish(event Event) {
	if ps.upstream != nil {
		ps.upstream.Publish(event)
		return
	}
	ps.local.broadcast(event)
}

// SubscriberCount returns the number of local subscribers
func (ps *PubSub) SubscriberCount() int {
	return ps.local.count()
}

// Close closes the upstream and every local subscriber
func (ps *PubSub) Close() {
	if ps.upstream != nil {
		ps.upstream.Close()
	}
	ps.local.closeAll()
}
