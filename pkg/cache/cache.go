// Package cache provides pluggable caching for pipeline results.
//
// Edge processing is deterministic: the same diagram and the same options
// always produce the same routes, bundles, and styles. That makes whole-stage
// results cacheable by a hash of (diagram, options). Backends include a
// file-based cache for CLI usage, a Redis cache for server deployments, and
// a null cache for tests or when caching is disabled.
package cache

import (
	"context"
	"time"
)

// Cache durations per result type. Stage results only change when the
// diagram or options change, so they can live long; complete pipeline
// results are larger and refresh more cheaply.
const (
	TTLRoute  = 24 * time.Hour
	TTLBundle = 24 * time.Hour
	TTLStyle  = 24 * time.Hour
	TTLResult = 6 * time.Hour
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found;
	// a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL. Zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the different result types.
// Key generation is separated from storage so scoping (multi-tenant
// prefixes) can wrap any backend.
type Keyer interface {
	// RouteKey generates a key for routed-path results.
	RouteKey(diagramHash string, opts any) string

	// BundleKey generates a key for bundling results.
	BundleKey(diagramHash string, opts any) string

	// StyleKey generates a key for styling results.
	StyleKey(diagramHash string, opts any) string

	// ResultKey generates a key for complete pipeline results.
	ResultKey(diagramHash string, opts any) string
}

// DefaultKeyer generates unscoped SHA-256 based keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// RouteKey generates a key for routed-path results.
func (k *DefaultKeyer) RouteKey(diagramHash string, opts any) string {
	return hashKey("route", diagramHash, opts)
}

// BundleKey generates a key for bundling results.
func (k *DefaultKeyer) BundleKey(diagramHash string, opts any) string {
	return hashKey("bundle", diagramHash, opts)
}

// StyleKey generates a key for styling results.
func (k *DefaultKeyer) StyleKey(diagramHash string, opts any) string {
	return hashKey("style", diagramHash, opts)
}

// ResultKey generates a key for complete pipeline results.
func (k *DefaultKeyer) ResultKey(diagramHash string, opts any) string {
	return hashKey("result", diagramHash, opts)
}

// NullCache discards everything and always misses. It backs --no-cache runs
// and keeps tests free of filesystem state.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
