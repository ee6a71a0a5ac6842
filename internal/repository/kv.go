package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Store is the subset of key-value commands this application persists
// through. Two implementations exist: RedisStore for real deployments and
// MemoryStore for environments without Redis credentials. Both follow
// Redis command semantics exactly so repositories cannot tell them apart.
type Store interface {
	// Get returns the string value at key, or ErrKeyMissing when the key
	// has never been set.
	Get(ctx context.Context, key string) (string, error)
	// Set writes the string value at key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Del removes keys and reports how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// SAdd adds members to the set at key.
	SAdd(ctx context.Context, key string, members ...string) error
	// SRem removes members from the set at key and reports how many were
	// actually present.
	SRem(ctx context.Context, key string, members ...string) (int64, error)
	// SMembers returns all members of the set at key (empty when unset).
	SMembers(ctx context.Context, key string) ([]string, error)

	// HSet writes the given fields into the hash at key.
	HSet(ctx context.Context, key string, fields map[string]string) error
	// HGetAll returns all fields of the hash at key (empty map when unset).
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// RedisStore adapts a go-redis client to the Store interface.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an already-connected client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyMissing
	}
	return v, err
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) (int64, error) {
	return s.rdb.Del(ctx, keys...).Result()
}

func (s *RedisStore) SAdd(ctx context.Context, key string, members ...string) error {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return s.rdb.SAdd(ctx, key, args...).Err()
}

func (s *RedisStore) SRem(ctx context.Context, key string, members ...string) (int64, error) {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return s.rdb.SRem(ctx, key, args...).Result()
}

func (s *RedisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	return s.rdb.SMembers(ctx, key).Result()
}

func (s *RedisStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return s.rdb.HSet(ctx, key, args...).Err()
}

func (s *RedisStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return s.rdb.HGetAll(ctx, key).Result()
}
