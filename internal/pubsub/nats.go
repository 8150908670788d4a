package pubsub

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
)

// DefaultStreamName is the JetStream stream holding draft events
const DefaultStreamName = "DRAFT_EVENTS"

// jetStream publishes events to a JetStream subject and fans out what it
// consumes back to local subscribers
type jetStream struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	sub     *nats.Subscription
	subject string
	local   *fanout
}

func newJetStream(nc *nats.Conn, cfg *nats.StreamConfig, name string) (*jetStream, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	if _, err := js.StreamInfo(cfg.Name); err != nil {
		if _, err := js.AddStream(cfg); err != nil {
			return nil, fmt.Errorf("failed to create stream %s: %w", cfg.Name, err)
		}
		logger.Info("JetStream stream created", "stream", cfg.Name, "subjects", cfg.Subjects)
	}

	p := &jetStream{nc: nc, js: js, subject: cfg.Subjects[0], local: newFanout(name, 100)}
	p.sub, err = js.Subscribe(p.subject, p.handle, nats.ManualAck(), nats.DeliverNew())
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", p.subject, err)
	}
	return p, nil
}

func (p *jetStream) handle(msg *nats.Msg) {
	var event Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to unmarshal event from JetStream", "error", err)
		_ = msg.Term()
		return
	}
	p.local.broadcast(event)
	_ = msg.Ack()
}

func (p *jetStream) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return
	}
	if _, err := p.js.Publish(p.subject, data); err != nil {
		logger.Error("Failed to publish to NATS", "error", err, "subject", p.subject, "event_type", event.Type)
		return
	}
	logger.Debug("Published event to NATS", "event_type", event.Type, "subject", p.subject)
}

func (p *jetStream) Subscribe() chan Event {
	return p.local.subscribe()
}

func (p *jetStream) Unsubscribe(ch chan Event) {
	p.local.unsubscribe(ch)
}

func (p *jetStream) close() {
	if p.sub != nil {
		_ = p.sub.Unsubscribe()
	}
	p.local.closeAll()
	if p.nc != nil {
		p.nc.Close()
	}
}

// NATSPubSub is the production upstream backed by an external NATS server
type NATSPubSub struct {
	*jetStream
}

// NewNATSPubSub connects to natsURL and ensures the event stream exists
func NewNATSPubSub(natsURL, subject string) (*NATSPubSub, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("draft-assistant"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := newJetStream(nc, &nats.StreamConfig{
		Name:     DefaultStreamName,
		Subjects: []string{subject},
		Storage:  nats.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	}, "nats")
	if err != nil {
		nc.Close()
		return nil, err
	}

	logger.Info("Connected to NATS", "url", natsURL, "subject", subject)
	return &NATSPubSub{jetStream: js}, nil
}

// Close drains the subscription and closes the connection
func (p *NATSPubSub) Close() {
	p.close()
}
