package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"serverless-workflow/backend/internal/catalog"
)

// MemoryEntityStore keeps provider entities in process memory. It backs the
// server when no database is configured.
type MemoryEntityStore struct {
	mu       sync.RWMutex
	entities map[string][]catalog.DeferredEntity
}

var _ EntityStore = (*MemoryEntityStore)(nil)

func NewMemoryEntityStore() *MemoryEntityStore {
	return &MemoryEntityStore{entities: map[string][]catalog.DeferredEntity{}}
}

func (s *MemoryEntityStore) Migrate(context.Context) error { return nil }

func (s *MemoryEntityStore) Ping(context.Context) error { return nil }

// ApplyMutation replaces the provider's set. Entities sharing a reference
// collapse to the last one, matching the upsert of the postgres store.
func (s *MemoryEntityStore) ApplyMutation(
	_ context.Context, provider string, mutation catalog.Mutation,
) error {
	if mutation.Type != catalog.MutationFull {
		return fmt.Errorf("%w: %s", catalog.ErrUnsupportedMutation, mutation.Type)
	}

	byRef := make(map[string]catalog.DeferredEntity, len(mutation.Entities))
	for _, deferred := range mutation.Entities {
		byRef[deferred.Entity.Ref()] = deferred
	}
	next := make([]catalog.DeferredEntity, 0, len(byRef))
	for _, deferred := range byRef {
		next = append(next, deferred)
	}
	sort.Slice(next, func(i, j int) bool {
		return next[i].Entity.Ref() < next[j].Entity.Ref()
	})

	s.mu.Lock()
	s.entities[provider] = next
	s.mu.Unlock()
	return nil
}

func (s *MemoryEntityStore) ListEntities(
	_ context.Context, provider string,
) ([]catalog.DeferredEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.DeferredEntity, len(s.entities[provider]))
	copy(out, s.entities[provider])
	return out, nil
}

func (s *MemoryEntityStore) Connection(provider string) catalog.Connection {
	return &providerConnection{store: s, provider: provider}
}
