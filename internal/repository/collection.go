package repository

import (
	"context"
	"encoding/json"
	"strings"
)

// Keys of the content collections. Each collection is one JSON document;
// the admin managers always save the full list, so there is nothing finer
// to address.
const (
	ProjectsKey   = "av:projects"
	ServicesKey   = "av_services_v1"
	ArtistsKey    = "av:artists"
	TeamKey       = "av:team"
	CategoriesKey = "categories"
)

// Collection is a typed view over a single-blob list in the KV store.
// Load returns the whole list, Save replaces it. As with users, writes are
// last-write-wins full-document replacements; two editors saving
// concurrently will not be merged.
type Collection[T any] struct {
	store Store
	key   string
}

// NewCollection binds a collection type to its KV key.
func NewCollection[T any](store Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

// Load returns all items, or an empty slice when the key was never
// written. Store errors propagate: a public page can fall back to defaults,
// but the admin managers must know a read failed.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	raw, err := c.store.Get(ctx, c.key)
	if err == ErrKeyMissing {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Save replaces the whole collection. Write errors propagate so the caller
// never reports a save that did not happen.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.key, string(raw))
}
