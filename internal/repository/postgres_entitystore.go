package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serverless-workflow/backend/internal/catalog"
)

const schema = `CREATE TABLE IF NOT EXISTS catalog_entities (
	provider     TEXT NOT NULL,
	entity_ref   TEXT NOT NULL,
	location_key TEXT NOT NULL DEFAULT '',
	entity       JSONB NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (provider, entity_ref)
)`

// PostgresEntityStore is a PostgreSQL implementation of the EntityStore interface.
type PostgresEntityStore struct {
	db *pgxpool.Pool
}

var _ EntityStore = (*PostgresEntityStore)(nil)

// NewPostgresEntityStore creates a new PostgresEntityStore.
func NewPostgresEntityStore(db *pgxpool.Pool) *PostgresEntityStore {
	return &PostgresEntityStore{db: db}
}

// Migrate creates the entity table.
func (s *PostgresEntityStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

// Ping checks connectivity to the database.
func (s *PostgresEntityStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// ApplyMutation replaces every entity owned by provider with the entities of
// the mutation, inside a single transaction.
func (s *PostgresEntityStore) ApplyMutation(
	ctx context.Context, provider string, mutation catalog.Mutation,
) error {
	if mutation.Type != catalog.MutationFull {
		return fmt.Errorf("%w: %s", catalog.ErrUnsupportedMutation, mutation.Type)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM catalog_entities WHERE provider = $1", provider); err != nil {
		return fmt.Errorf("failed to clear entities: %w", err)
	}

	batch := &pgx.Batch{}
	for _, deferred := range mutation.Entities {
		data, err := json.Marshal(deferred.Entity)
		if err != nil {
			return fmt.Errorf("failed to marshal entity %s: %w", deferred.Entity.Ref(), err)
		}
		batch.Queue(
			`INSERT INTO catalog_entities (provider, entity_ref, location_key, entity)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (provider, entity_ref) DO UPDATE
			 SET location_key = EXCLUDED.location_key, entity = EXCLUDED.entity, updated_at = now()`,
			provider, deferred.Entity.Ref(), deferred.LocationKey, data,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert entities: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListEntities returns the entities owned by provider ordered by reference.
func (s *PostgresEntityStore) ListEntities(
	ctx context.Context, provider string,
) ([]catalog.DeferredEntity, error) {
	rows, err := s.db.Query(ctx,
		"SELECT location_key, entity FROM catalog_entities WHERE provider = $1 ORDER BY entity_ref",
		provider,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entities := []catalog.DeferredEntity{}
	for rows.Next() {
		var (
			deferred catalog.DeferredEntity
			raw      []byte
		)
		if err := rows.Scan(&deferred.LocationKey, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &deferred.Entity); err != nil {
			return nil, fmt.Errorf("failed to decode entity: %w", err)
		}
		entities = append(entities, deferred)
	}
	return entities, rows.Err()
}

// Connection binds the store to one provider so it can be handed to that
// provider as its catalog connection.
func (s *PostgresEntityStore) Connection(provider string) catalog.Connection {
	return &providerConnection{store: s, provider: provider}
}

type providerConnection struct {
	store    EntityStore
	provider string
}

func (c *providerConnection) ApplyMutation(ctx context.Context, mutation catalog.Mutation) error {
	return c.store.ApplyMutation(ctx, c.provider, mutation)
}
