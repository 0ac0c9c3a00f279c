// Package cache provides pluggable byte caches for pipeline artifacts.
//
// The pipeline caches two expensive products keyed by content hashes:
// computed layout geometry and rendered artifacts (DOT, SVG, PDF, PNG).
// Backends include a directory-based [FileCache] for CLI usage, a
// [RedisCache] for shared deployments, and a [NullCache] for tests or when
// caching is disabled.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached product. Layout geometry and artifacts derive
// deterministically from their keys, so the TTLs only bound disk usage.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte store with optional expiry. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
