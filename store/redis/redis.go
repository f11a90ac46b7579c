package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smallnest/researchgraph/search"
)

// SearchCache implements search.Cache using Redis. Entries expire after the
// configured TTL; an index set tracks the keys written so Clear can remove
// them without scanning the keyspace.
type SearchCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ search.Cache = (*SearchCache)(nil)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "research:"
	TTL      time.Duration // Expiration for cached responses, 0 means none
}

// NewSearchCache connects to Redis. The connection is made lazily by the client.
func NewSearchCache(opts Options) *SearchCache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewSearchCacheFromClient(client, opts.Prefix, opts.TTL)
}

// NewSearchCacheFromClient uses an existing client.
func NewSearchCacheFromClient(client *redis.Client, prefix string, ttl time.Duration) *SearchCache {
	if prefix == "" {
		prefix = "research:"
	}
	return &SearchCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *SearchCache) responseKey(key string) string {
	return fmt.Sprintf("%ssearch:%s", s.prefix, key)
}

func (s *SearchCache) indexKey() string {
	return s.prefix + "search:keys"
}

// Get loads a cached response. A missing or expired entry is a miss, not an error.
func (s *SearchCache) Get(ctx context.Context, key string) (search.Response, bool, error) {
	data, err := s.client.Get(ctx, s.responseKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return search.Response{}, false, nil
		}
		return search.Response{}, false, fmt.Errorf("failed to load search response from redis: %w", err)
	}

	var resp search.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return search.Response{}, false, fmt.Errorf("failed to unmarshal search response: %w", err)
	}
	return resp, true, nil
}

// Set stores resp under key.
func (s *SearchCache) Set(ctx context.Context, key string, resp search.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal search response: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.responseKey(key), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), key)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.indexKey(), s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save search response to redis: %w", err)
	}
	return nil
}

// Delete removes one entry.
func (s *SearchCache) Delete(ctx context.Context, key string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.responseKey(key))
	pipe.SRem(ctx, s.indexKey(), key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete search response: %w", err)
	}
	return nil
}

// Clear removes every entry written through this prefix.
func (s *SearchCache) Clear(ctx context.Context) error {
	keys, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to list cached searches: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, s.responseKey(key))
	}
	pipe.Del(ctx, s.indexKey())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear cached searches: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *SearchCache) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *SearchCache) Close() error {
	return s.client.Close()
}
