// Package state provides persistent key-value storage with file and Redis
// backends. It holds the per-user OAuth tokens that outlive a single request.
package state

import (
	"context"
)

// KV is the interface for key-value storage backends. Values are opaque
// strings; callers marshal their own records.
type KV interface {
	// Get retrieves a value. The boolean reports whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value.
	Set(ctx context.Context, key, value string) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys that start with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases the backend.
	Close() error
}

// BackendType represents the storage backend type.
type BackendType string

const (
	BackendFile  BackendType = "file"
	BackendRedis BackendType = "redis"
)

// Config configures the state store.
type Config struct {
	Backend BackendType

	// File backend
	FilePath string

	// Redis backend
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}
