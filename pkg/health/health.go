package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout = 5 * time.Second

	// StatusHealthy indicates all checks passed.
	StatusHealthy = "healthy"
	// StatusUnhealthy indicates one or more checks failed.
	StatusUnhealthy = "unhealthy"
)

// CheckFunc is the standard health check signature, matching the closures
// returned by pkg/redis.Healthcheck and cache.Store.Healthcheck.
type CheckFunc func(ctx context.Context) error

// Checks is a map of named health check functions.
type Checks map[string]CheckFunc

// Response is the aggregated result of running all checks.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the outcome of a single named check.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Option configures check execution.
type Option func(*config)

type config struct {
	timeout time.Duration
}

// WithTimeout sets the shared deadline for one round of checks.
// Default: 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Run executes all checks in parallel under a shared deadline and aggregates
// the outcome. A check that outlives the deadline reports its context error.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	cfg := &config{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(cfg)
	}

	resp := &Response{
		Status: StatusHealthy,
		Checks: make(map[string]Check, len(checks)),
	}
	if len(checks) == 0 {
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for name, check := range checks {
		g.Go(func() error {
			err := check(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				resp.Checks[name] = Check{Status: StatusUnhealthy, Error: err.Error()}
				resp.Status = StatusUnhealthy
			} else {
				resp.Checks[name] = Check{Status: StatusHealthy}
			}
			return nil
		})
	}
	_ = g.Wait()

	return resp
}
