// Package cache provides the caching layer for discovery runs.
//
// Collecting a snapshot means SSH-ing into every device in the inventory,
// which dominates wall-clock time; snapshots and rendered artifacts are
// therefore cached between invocations. Three backends exist:
//
//   - FileCache: XDG cache directory, the CLI default
//   - RedisCache: shared cache for multi-user deployments
//   - NullCache: caching disabled
//
// Keys are produced by a Keyer so that every consumer (CLI, pipeline,
// server) derives identical keys for identical inputs.
package cache

import (
	"context"
	"time"
)

// TTLs per cached object class. Snapshots age fast - the network changes
// under them - while artifacts are pure functions of their snapshot.
const (
	// TTLSnapshot bounds how stale a cached discovery run may get.
	TTLSnapshot = 15 * time.Minute

	// TTLArtifact applies to rendered outputs (HTML, SVG, JSON).
	TTLArtifact = 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
// A zero TTL stores the entry without expiration.
type Cache interface {
	// Get retrieves a value. The second return reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NullCache is a no-op cache that never stores anything.
// Used when caching is disabled (--no-cache) and in tests.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always returns a cache miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

// Ensure NullCache implements Cache.
var _ Cache = (*NullCache)(nil)
