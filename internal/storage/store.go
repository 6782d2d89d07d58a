// Package storage provides the key-value persistence adapter every other
// component writes through. Values are JSON-encoded; keys partition data
// per user and per patient identifier.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a get/set/remove-by-string-key store. Implementations must be
// safe for concurrent use; writes are last-write-wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetTTL stores a value that expires after ttl. Backends without
	// native expiry may approximate it.
	SetTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}

// GetJSON reads and decodes the value at key into v.
// Returns ErrNotFound when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode value for %q: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode value for %q: %w", key, err)
	}
	return s.Set(ctx, key, data)
}

// SetJSONTTL encodes v and stores it at key with an expiry.
func SetJSONTTL(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode value for %q: %w", key, err)
	}
	return s.SetTTL(ctx, key, data, ttl)
}
