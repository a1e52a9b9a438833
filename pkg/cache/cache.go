// Package cache stores solved layouts and rendered artifacts between runs.
//
// The pipeline keys every entry by a SHA-256 hash of the scene document and
// the options that influence the result, so a scene that did not change is
// never laid out twice. Two backends are provided: [FileCache] for the CLI
// and [NullCache] when caching is disabled. [WithHooks] wraps either one and
// reports hits, misses and writes to the registered observability hooks.
package cache

import (
	"context"
	"errors"
	"time"
)

// TTLs for the entry kinds written by the pipeline. A zero TTL never expires.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// ErrClosed is returned by operations on a cache after Close.
var ErrClosed = errors.New("cache closed")

// Cache is a byte store with optional expiry.
//
// Get reports a miss with (nil, false, nil); errors are reserved for backend
// failures. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
