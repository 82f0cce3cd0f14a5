// Package events delivers topic events to subscribers. Subscribers never
// register themselves; whoever owns both sides calls Subscribe.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
)

type (
	// Params is a single event delivered to subscribers
	Params struct {
		Topic        string            `json:"topic"`
		EventPayload json.RawMessage   `json:"eventPayload,omitempty"`
		Metadata     map[string]string `json:"metadata,omitempty"`
	}

	// Subscriber receives events for the topics it declares
	Subscriber interface {
		SupportedTopics() []string
		OnEvent(ctx context.Context, params Params) error
	}

	// Publisher sends events to a topic
	Publisher interface {
		Publish(ctx context.Context, params Params) error
	}

	// Broker routes published events to subscribers
	Broker interface {
		Publisher
		Subscribe(subscribers ...Subscriber)
	}
)

var (
	ErrEmptyTopic   = errors.New("event topic is empty")
	ErrNotConnected = errors.New("broker is not connected")
)

// MetadataEventID is the metadata key carrying the unique event id
const MetadataEventID = "eventId"

// Accepts reports whether sub declared the topic
func Accepts(sub Subscriber, topic string) bool {
	return slices.Contains(sub.SupportedTopics(), topic)
}
