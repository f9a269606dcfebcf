package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harentsoaR/esannidhi-api/internal/kv"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// load decodes the JSON array stored under key. A missing key is an empty slice.
func load[T any](ctx context.Context, store kv.Store, key string) ([]T, error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to load %s: %w", key, err)
	}
	items := make([]T, 0)
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("storage: failed to decode %s: %w", key, err)
	}
	return items, nil
}

func save[T any](ctx context.Context, store kv.Store, key string, items []T) error {
	if items == nil {
		items = make([]T, 0)
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("storage: failed to encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("storage: failed to persist %s: %w", key, err)
	}
	return nil
}

// mutate runs a locked load, fn, save cycle on one collection.
func mutate[T any](ctx context.Context, s *Service, key string, fn func([]T) ([]T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := load[T](ctx, s.store, key)
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return save(ctx, s.store, key, items)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}
