// Package cache stores pipeline outputs keyed by their inputs.
//
// Fitting a photo (a Lanczos resample) and encoding a sheet (PNG deflate or a
// PDF) dominate the cost of a run, so the pipeline caches both: the fitted
// photo under [Keyer.PhotoKey] and each encoded artifact under
// [Keyer.ArtifactKey]. Keys hash every option that influences the bytes, so
// changing the DPI, paper or fit policy never returns a stale result.
//
// # Backends
//
//   - [FileCache]: one JSON entry per key under a directory, for the CLI
//   - [RedisCache]: shared cache for server deployments
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: caching disabled
//
// [Open] picks a backend from a [Config].
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache is a byte store with optional expiration. Implementations are safe
// for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases connections held by the backend.
	Close() error
}

// Expiration for cached entries.
const (
	TTLPhoto    = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend       string
	Dir           string
	RedisURL      string
	MongoURI      string
	MongoDatabase string
}

// Open creates the backend named by cfg.Backend. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		c, err = NewFileCache(cfg.Dir)
	case BackendRedis:
		c, err = NewRedisCache(ctx, cfg.RedisURL)
	case BackendMongo:
		c, err = NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case BackendNone, "null", "off":
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (must be file, redis, mongo or none)", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

// Get always misses.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards data.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete is a no-op.
func (NullCache) Delete(context.Context, string) error { return nil }

// Close is a no-op.
func (NullCache) Close() error { return nil }
