// Package store defines the durable key-value port the engine persists
// visitor state through. Production runs against Redis; tests and the
// simulator run against the in-memory implementation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("store: key not found")

// KV is a narrow key-value port. Values are opaque JSON blobs; the store
// never interprets them.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// GetJSON reads a key and unmarshals its value into target.
// Returns ErrNotFound when the key is absent.
func GetJSON(ctx context.Context, kv KV, key string, target interface{}) error {
	data, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("store: decoding %s: %w", key, err)
	}
	return nil
}

// SetJSON marshals value and writes it under key.
func SetJSON(ctx context.Context, kv KV, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encoding %s: %w", key, err)
	}
	return kv.Set(ctx, key, data)
}
