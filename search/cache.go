package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/smallnest/researchgraph/log"
)

// Cache stores search responses by key. store/redis provides an implementation.
type Cache interface {
	// Get returns the cached response; found is false on a miss.
	Get(ctx context.Context, key string) (resp Response, found bool, err error)
	Set(ctx context.Context, key string, resp Response) error
}

// Relabeler is implemented by backends whose results depend on the research
// loop, such as loop-numbered titles. Cached responses are passed through
// Relabel before being returned.
type Relabeler interface {
	Relabel(ctx context.Context, resp Response) Response
}

// CachedBackend serves repeated queries from a Cache. Only successful,
// non-empty responses are stored. Cache failures are logged and otherwise
// ignored: the backend is still called.
type CachedBackend struct {
	name    string
	backend Backend
	cache   Cache
	logger  log.Logger
}

var _ Backend = (*CachedBackend)(nil)

// Cached wraps backend with cache. name namespaces the keys so two backends
// never share entries.
func Cached(name string, backend Backend, cache Cache, logger log.Logger) *CachedBackend {
	return &CachedBackend{
		name:    name,
		backend: backend,
		cache:   cache,
		logger:  log.OrDefault(logger),
	}
}

// CacheKey returns the cache key used for query on the named backend.
func CacheKey(name, query string) string {
	sum := sha256.Sum256([]byte(query))
	return name + ":" + hex.EncodeToString(sum[:])
}

// Search returns the cached response for query or asks the backend.
func (c *CachedBackend) Search(ctx context.Context, query string) (Response, error) {
	key := CacheKey(c.name, query)

	resp, found, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("search cache get %s: %v", key, err)
	} else if found {
		c.logger.Debug("search cache hit for %q on %s", query, c.name)
		if r, ok := c.backend.(Relabeler); ok {
			resp = r.Relabel(ctx, resp)
		}
		return resp, nil
	}

	resp, err = c.backend.Search(ctx, query)
	if err != nil {
		return resp, err
	}
	if len(resp.Results) > 0 {
		if err := c.cache.Set(ctx, key, resp); err != nil {
			c.logger.Warn("search cache set %s: %v", key, err)
		}
	}
	return resp, nil
}

// Close closes the wrapped backend when it holds resources.
func (c *CachedBackend) Close() error {
	if closer, ok := c.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
