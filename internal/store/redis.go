package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Redis is a KV implementation backed by a Redis instance. Keys are
// namespaced with a fixed prefix so the engine can share a database with
// other services. Values have no TTL; visitor state survives until
// explicitly pruned.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed store using the given client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, prefix: "growth:"}
}

// Get returns the value stored under key, or ErrNotFound.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores value under key with no expiry.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

// Delete removes key. Deleting an absent key is not an error.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}
