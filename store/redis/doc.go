// Package redis provides a Redis-backed cache for search responses.
//
// Responses are stored as JSON under {prefix}search:{key}, with an optional
// TTL. Wire it in front of a search backend with search.WithCache or
// research.WithSearchCache:
//
//	cache := redis.NewSearchCache(redis.Options{
//		Addr:   "localhost:6379",
//		Prefix: "research:",
//		TTL:    24 * time.Hour,
//	})
//	defer cache.Close()
//
//	sess, err := research.NewSession(cfg, research.WithSearchCache(cache))
//
// Only successful, non-empty responses are cached, so a failing backend is
// asked again on the next search.
package redis
