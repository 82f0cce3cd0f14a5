package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"serverless-workflow/backend/internal/logging"
)

// NATSBroker publishes events as JSON envelopes on NATS subjects named
// <prefix>.<topic>. Subscriptions added before Start are activated when the
// connection is established.
type NATSBroker struct {
	url    string
	prefix string
	logger *logging.Logger

	mu            sync.RWMutex
	conn          *nats.Conn
	subscribers   []Subscriber
	subscriptions []*nats.Subscription
}

var _ Broker = (*NATSBroker)(nil)

// NewNATSBroker creates a broker for the given server URL and subject prefix
func NewNATSBroker(url, prefix string, logger *logging.Logger) *NATSBroker {
	if url == "" {
		url = nats.DefaultURL
	}
	return &NATSBroker{url: url, prefix: prefix, logger: logger}
}

// Subject returns the NATS subject used for a topic
func (b *NATSBroker) Subject(topic string) string {
	if b.prefix == "" {
		return topic
	}
	return b.prefix + "." + topic
}

// Subscribe registers subscribers, activating them immediately when the
// broker is already connected
func (b *NATSBroker) Subscribe(subscribers ...Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers = append(b.subscribers, subscribers...)
	if b.conn == nil {
		return
	}
	for _, sub := range subscribers {
		if err := b.activate(sub); err != nil {
			b.logger.Error("Failed to activate NATS subscription", logging.Error(err))
		}
	}
}

// Start connects to NATS and activates pending subscriptions
func (b *NATSBroker) Start(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	conn, err := nats.Connect(b.url, nats.Name("swf-backend"))
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", b.url, err)
	}
	b.conn = conn

	for _, sub := range b.subscribers {
		if err := b.activate(sub); err != nil {
			return err
		}
	}

	b.logger.Info("NATS broker started", logging.URL(b.url))
	return nil
}

// Stop drains subscriptions and closes the connection
func (b *NATSBroker) Stop(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.subscriptions {
		if err := s.Unsubscribe(); err != nil {
			b.logger.Error("Failed to unsubscribe",
				"subject", s.Subject, logging.Error(err))
		}
	}
	b.subscriptions = nil

	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
	b.logger.Info("NATS broker stopped")
	return nil
}

// Publish sends the event to the topic's subject
func (b *NATSBroker) Publish(_ context.Context, params Params) error {
	if params.Topic == "" {
		return ErrEmptyTopic
	}

	b.mu.RLock()
	conn := b.conn
	b.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}

	data, err := EncodeEnvelope(withEventID(params))
	if err != nil {
		return err
	}
	if err := conn.Publish(b.Subject(params.Topic), data); err != nil {
		return fmt.Errorf("failed to publish to topic %q: %w", params.Topic, err)
	}
	return nil
}

func (b *NATSBroker) activate(sub Subscriber) error {
	for _, topic := range sub.SupportedTopics() {
		s, err := b.conn.Subscribe(b.Subject(topic), b.handler(sub))
		if err != nil {
			return fmt.Errorf("failed to subscribe to topic %q: %w", topic, err)
		}
		b.subscriptions = append(b.subscriptions, s)
	}
	return nil
}

func (b *NATSBroker) handler(sub Subscriber) nats.MsgHandler {
	return func(msg *nats.Msg) {
		params, err := DecodeEnvelope(msg.Data)
		if err != nil {
			b.logger.Error("Dropping malformed event",
				"subject", msg.Subject, logging.Error(err))
			return
		}
		if err := sub.OnEvent(context.Background(), params); err != nil {
			b.logger.Error("Subscriber failed to handle event",
				logging.Topic(params.Topic), logging.Error(err))
		}
	}
}

// EncodeEnvelope renders params as the JSON wire envelope
func EncodeEnvelope(params Params) ([]byte, error) {
	return json.Marshal(params)
}

// DecodeEnvelope parses a JSON wire envelope
func DecodeEnvelope(data []byte) (Params, error) {
	var params Params
	if err := json.Unmarshal(data, &params); err != nil {
		return Params{}, err
	}
	if params.Topic == "" {
		return Params{}, ErrEmptyTopic
	}
	return params, nil
}
