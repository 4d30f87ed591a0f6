package cache

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	pkgredis "github.com/quizora/platform/pkg/redis"
)

// Store is a cache-aside client to a Redis-compatible key/value store.
//
// The connection is established lazily on first use. If no URL is configured
// or the connection attempt fails, the store runs disabled: every fetch
// computes directly and invalidation becomes a no-op. Store failures never
// surface to callers; the only observable difference is latency.
type Store struct {
	url  string
	cfg  Config
	log  *slog.Logger
	dial func(ctx context.Context) (redis.UniversalClient, error)

	sf singleflight.Group

	mu     sync.Mutex
	client redis.UniversalClient
	failed bool
	warned bool
}

// Option configures a Store.
type Option func(*Store)

// WithClient sets an already-established client, bypassing lazy dialing.
// Useful for sharing one connection pool across components and in tests.
func WithClient(client redis.UniversalClient) Option {
	return func(s *Store) {
		s.client = client
	}
}

// WithLogger sets the logger for diagnostic output.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Store from the given config. The config is normalized first,
// so non-positive TTLs and batch sizes fall back to defaults.
func New(cfg Config, opts ...Option) *Store {
	cfg = cfg.Normalize()

	s := &Store{
		url: cfg.RedisURL,
		cfg: cfg,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	s.dial = func(ctx context.Context) (redis.UniversalClient, error) {
		return pkgredis.Open(ctx, s.url)
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// conn returns the shared client, dialing lazily on first use.
// Returns nil when the store is disabled: no URL configured, or a previous
// connection attempt failed and Close has not reset the state since.
//
// Concurrent first callers converge on a single dial via singleflight;
// all of them observe the outcome of that one attempt.
func (s *Store) conn(ctx context.Context) redis.UniversalClient {
	s.mu.Lock()
	if s.client != nil {
		c := s.client
		s.mu.Unlock()
		return c
	}
	if s.url == "" || s.failed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	v, err, _ := s.sf.Do("connect", func() (any, error) {
		s.mu.Lock()
		if s.client != nil {
			c := s.client
			s.mu.Unlock()
			return c, nil
		}
		if s.failed {
			s.mu.Unlock()
			return nil, pkgredis.ErrConnectionFailed
		}
		s.mu.Unlock()

		client, err := s.dial(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.failed = true
			if !s.warned {
				s.warned = true
				s.log.Warn("cache: connection failed, running without cache", "error", err)
			}
			return nil, err
		}
		s.client = client
		return client, nil
	})
	if err != nil {
		return nil
	}
	return v.(redis.UniversalClient)
}

// Enabled reports whether the store has an endpoint configured or an
// injected client to work with.
func (s *Store) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url != "" || s.client != nil
}

// Delete removes one exact key. Best-effort: failures are logged at debug
// level and swallowed.
func (s *Store) Delete(ctx context.Context, key string) {
	client := s.conn(ctx)
	if client == nil {
		return
	}
	if err := client.Del(ctx, key).Err(); err != nil {
		s.log.Debug("cache: delete failed", "key", key, "error", err)
	}
}

// Invalidate removes every key matching a glob-style pattern using a
// cursor-based SCAN so large keyspaces are swept in bounded batches instead
// of one blocking listing. Best-effort: errors abort the sweep silently.
func (s *Store) Invalidate(ctx context.Context, pattern string) {
	client := s.conn(ctx)
	if client == nil {
		return
	}

	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, pattern, s.cfg.ScanBatchSize).Result()
		if err != nil {
			s.log.Debug("cache: invalidation scan failed", "pattern", pattern, "error", err)
			return
		}

		if len(keys) > 0 {
			if err := client.Del(ctx, keys...).Err(); err != nil {
				s.log.Debug("cache: invalidation delete failed", "pattern", pattern, "error", err)
			}
		}

		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// Healthcheck returns a closure for readiness probes. A disabled store is
// healthy: the platform runs correctly without caching.
func (s *Store) Healthcheck() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		s.mu.Lock()
		client := s.client
		s.mu.Unlock()
		if client == nil {
			return nil
		}
		return pkgredis.Healthcheck(client)(ctx)
	}
}

// Close releases the connection and resets the failure and warn-once state,
// so a later use dials fresh and logs fresh diagnostics. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.client != nil {
		err = s.client.Close()
		s.client = nil
	}
	s.failed = false
	s.warned = false
	return err
}
