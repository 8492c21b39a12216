// Package cache provides content-addressed caching for conversion and
// render results.
//
// Three backends cover the deployment modes: [FileCache] for CLI runs,
// [RedisCache] for the server, and [NullCache] to disable caching. Keys
// are built by a [Keyer] so callers never assemble key strings by hand;
// [ScopedKeyer] prefixes keys for multi-tenant isolation.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented cache with per-entry TTL. Implementations
// must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Cache lifetimes per artifact family.
const (
	// TTLConvert bounds cached conversion outputs. Conversions are
	// cheap-ish to redo, so entries turn over quickly.
	TTLConvert = 1 * time.Hour

	// TTLRender bounds cached graph renders. Renders go through the
	// layout engine and are keyed on a content hash, so they stay
	// valid until the input changes.
	TTLRender = 24 * time.Hour
)
