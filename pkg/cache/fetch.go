package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// notFoundPayload marks a key that was computed and found to have no value.
// JSON marshaling never produces an empty payload, so the marker cannot
// collide with real data.
const notFoundPayload = ""

// ComputeFunc produces the authoritative value for a key on a cache miss.
// The bool result reports whether the value exists at all; returning false
// caches the not-found marker so the next miss is cheap.
type ComputeFunc[V any] func(ctx context.Context) (V, bool, error)

// Fetch is the cache-aside primitive: return the cached value for key, or
// invoke compute and write the result back with the given TTL.
//
// Every store failure degrades to "behave as if there were no cache":
// unreachable store, read errors, and malformed payloads all fall through to
// compute; the write-back is best-effort and its failure is swallowed. The
// only error Fetch ever returns is compute's own.
//
// Values round-trip through JSON, which preserves time.Time fields in
// RFC 3339 form. Two concurrent fetches for the same cold key may both
// compute and both write; last write wins, which is fine for idempotent
// reads.
func Fetch[V any](ctx context.Context, s *Store, key string, ttl time.Duration, compute ComputeFunc[V]) (V, bool, error) {
	client := s.conn(ctx)
	if client == nil {
		return compute(ctx)
	}

	payload, err := client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if payload == notFoundPayload {
			var zero V
			return zero, false, nil
		}
		var v V
		if uerr := json.Unmarshal([]byte(payload), &v); uerr == nil {
			return v, true, nil
		}
		// Malformed payload is a miss; the write-back below replaces it.
		s.log.Debug("cache: discarding malformed payload", "key", key)
	case errors.Is(err, redis.Nil):
		// Plain miss.
	default:
		s.log.Debug("cache: read failed", "key", key, "error", err)
	}

	v, found, err := compute(ctx)
	if err != nil {
		return v, found, err
	}

	s.writeBack(ctx, client, key, ttl, v, found)
	return v, found, nil
}

// writeBack stores a computed result. Fire-and-forget: any failure is logged
// at debug level and discarded.
func (s *Store) writeBack(ctx context.Context, client redis.UniversalClient, key string, ttl time.Duration, v any, found bool) {
	if !found {
		if err := client.Set(ctx, key, notFoundPayload, s.cfg.NotFoundTTL).Err(); err != nil {
			s.log.Debug("cache: not-found write failed", "key", key, "error", err)
		}
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.log.Debug("cache: marshal failed", "key", key, "error", err)
		return
	}

	if ttl <= 0 {
		ttl = DefaultListTTL
	}

	if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
		s.log.Debug("cache: write failed", "key", key, "error", err)
	}
}
