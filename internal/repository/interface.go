package repository

import (
	"context"

	"serverless-workflow/backend/internal/catalog"
)

// EntityStore is an interface for persisting the entities contributed by
// catalog entity providers.
type EntityStore interface {
	// Migrate creates the backing schema if it does not exist.
	Migrate(ctx context.Context) error
	// ApplyMutation applies a mutation on behalf of the named provider.
	ApplyMutation(ctx context.Context, provider string, mutation catalog.Mutation) error
	// ListEntities returns the entities currently owned by the provider.
	ListEntities(ctx context.Context, provider string) ([]catalog.DeferredEntity, error)
	// Ping checks connectivity to the store.
	Ping(ctx context.Context) error
}
