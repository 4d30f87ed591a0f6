// Package redis provides the Redis connection plumbing used by the caching
// layer.
//
// It wraps [github.com/redis/go-redis/v9] with URL-based configuration,
// connection pool tuning via functional options, and a health check closure
// for readiness probes.
//
// Open performs exactly one connection attempt. The caching layer treats a
// failed attempt as "cache disabled" rather than a fatal error, so retry
// loops belong to the caller, not here.
//
// Usage:
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"),
//	    redis.WithPoolSize(20),
//	)
//	if err != nil {
//	    // run without caching
//	}
//	defer client.Close()
package redis
