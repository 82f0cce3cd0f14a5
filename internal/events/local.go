package events

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"serverless-workflow/backend/internal/logging"
)

// LocalBroker delivers events synchronously within the process
type LocalBroker struct {
	mu          sync.RWMutex
	subscribers []Subscriber
	logger      *logging.Logger
}

var _ Broker = (*LocalBroker)(nil)

// NewLocalBroker creates an in-process broker
func NewLocalBroker(logger *logging.Logger) *LocalBroker {
	return &LocalBroker{logger: logger}
}

// Subscribe adds subscribers to the broker
func (b *LocalBroker) Subscribe(subscribers ...Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, subscribers...)
}

// Publish hands the event to every subscriber of its topic, in subscription
// order. Subscriber failures are logged and returned joined.
func (b *LocalBroker) Publish(ctx context.Context, params Params) error {
	if params.Topic == "" {
		return ErrEmptyTopic
	}
	params = withEventID(params)

	b.mu.RLock()
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	var errs []error
	for _, sub := range subs {
		if !Accepts(sub, params.Topic) {
			continue
		}
		if err := sub.OnEvent(ctx, params); err != nil {
			b.logger.Error("Subscriber failed to handle event",
				logging.Topic(params.Topic), logging.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func withEventID(params Params) Params {
	if params.Metadata[MetadataEventID] != "" {
		return params
	}
	md := make(map[string]string, len(params.Metadata)+1)
	for k, v := range params.Metadata {
		md[k] = v
	}
	md[MetadataEventID] = uuid.New().String()
	params.Metadata = md
	return params
}
