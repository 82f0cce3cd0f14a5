package catalog

import (
	"context"
	"errors"
)

// MutationType selects how a mutation is applied to a provider's entities
type MutationType string

// MutationFull replaces the provider's entire entity set
const MutationFull MutationType = "full"

// DeferredEntity is an entity together with the location that produced it
type DeferredEntity struct {
	Entity      TemplateEntity `json:"entity"`
	LocationKey string         `json:"locationKey,omitempty"`
}

// Mutation is a change to the set of entities owned by one provider
type Mutation struct {
	Type     MutationType     `json:"type"`
	Entities []DeferredEntity `json:"entities"`
}

// Connection is the channel through which a provider publishes mutations
type Connection interface {
	ApplyMutation(ctx context.Context, mutation Mutation) error
}

// EntityProvider supplies entities to the catalog
type EntityProvider interface {
	// ProviderName identifies the provider; entities are owned per name.
	ProviderName() string
	// Connect hands the provider the connection it publishes through.
	Connect(ctx context.Context, conn Connection) error
}

var ErrUnsupportedMutation = errors.New("unsupported mutation type")
