// Package cache stores rendered thumbnails so repeated conversions of the same
// tree skip Graphviz.
//
// Backends:
//   - file: one JSON file per entry under the XDG cache directory (CLI default)
//   - redis: a shared Redis instance, for API deployments with several replicas
//   - mongo: a MongoDB collection with a TTL index
//   - none: [NullCache], caching disabled
//
// Keys come from a [Keyer]; values are opaque bytes with an optional TTL.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte store with expiring entries. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get returns the stored value and whether it was found. Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLThumbnail is how long rendered thumbnails are kept.
const TTLThumbnail = 30 * 24 * time.Hour

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Dir is the file backend directory.
	Dir string

	// RedisURL is a redis:// URL for the redis backend.
	RedisURL string

	// MongoURI, MongoDatabase and MongoCollection configure the mongo backend.
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open creates the backend named by opts.Backend. An empty backend selects the
// file cache.
func Open(ctx context.Context, opts Options) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch opts.Backend {
	case "", BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory configured")
		}
		var fc *FileCache
		if fc, err = NewFileCache(opts.Dir); err == nil {
			c = fc
		}
	case BackendRedis:
		var rc *RedisCache
		if rc, err = NewRedisCache(ctx, opts.RedisURL); err == nil {
			c = rc
		}
	case BackendMongo:
		var mc *MongoCache
		mc, err = NewMongoCache(ctx, MongoOptions{
			URI:        opts.MongoURI,
			Database:   opts.MongoDatabase,
			Collection: opts.MongoCollection,
		})
		if err == nil {
			c = mc
		}
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
