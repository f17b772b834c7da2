// Package cache provides pluggable byte caches for pipeline artifacts.
//
// Built networks and projection results are expensive to recompute on large
// occurrence datasets, so the pipeline stores their serialized forms under
// content-derived keys. Three backends are provided: a file cache for CLI
// usage, a Redis cache for shared deployments, and a null cache that
// disables caching entirely.
package cache

import (
	"context"
	"time"
)

// Cache is the backend-agnostic storage interface.
// All implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss; a miss
	// is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL. A zero ttl means the entry
	// never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NetworkKeyOpts are the inputs that affect a built network beyond the raw
// records, and therefore belong in its cache key.
type NetworkKeyOpts struct {
	NamesMapHash string // hash of the names map, empty when none is used
}

// ProjectionKeyOpts are the inputs that affect a projection result.
type ProjectionKeyOpts struct {
	Partition string
	Rule      string
	Threshold float64
	HasThresh bool
}

// Keyer generates cache keys for the two artifact kinds.
type Keyer interface {
	// NetworkKey generates a key for a built network, derived from the
	// content hash of its input records.
	NetworkKey(batchHash string, opts NetworkKeyOpts) string

	// ProjectionKey generates a key for a projection, derived from the
	// key of the network it was projected from.
	ProjectionKey(networkKey string, opts ProjectionKeyOpts) string
}

// DefaultKeyer generates hash-based keys with type prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// NetworkKey generates a key of the form "network:<sha256>".
func (k *DefaultKeyer) NetworkKey(batchHash string, opts NetworkKeyOpts) string {
	return hashKey("network", batchHash, opts)
}

// ProjectionKey generates a key of the form "projection:<sha256>".
func (k *DefaultKeyer) ProjectionKey(networkKey string, opts ProjectionKeyOpts) string {
	return hashKey("projection", networkKey, opts)
}
