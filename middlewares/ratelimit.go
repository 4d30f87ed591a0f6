package middlewares

import (
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/quizora/platform/pkg/quota"
)

// IdentityFunc extracts the quota identity from a request: a user id for
// authenticated routes, the client IP for guest routes.
type IdentityFunc func(r *http.Request) string

// DeniedHandler renders the response for a denied request.
type DeniedHandler func(w http.ResponseWriter, r *http.Request, res quota.Result)

// RateLimitConfig configures the rate limit middleware.
type RateLimitConfig struct {
	Identity IdentityFunc
	OnDenied DeniedHandler
	Logger   *slog.Logger
}

// RateLimitOption configures RateLimitConfig.
type RateLimitOption func(*RateLimitConfig)

// WithIdentity sets the identity extractor. Default: ClientIP.
func WithIdentity(fn IdentityFunc) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if fn != nil {
			cfg.Identity = fn
		}
	}
}

// WithDeniedHandler sets a custom denial response. The default responds
// 429 with a JSON body carrying the exhausted scope and the reset delay.
func WithDeniedHandler(fn DeniedHandler) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if fn != nil {
			cfg.OnDenied = fn
		}
	}
}

// WithRateLimitLogger sets the logger for denial events.
func WithRateLimitLogger(log *slog.Logger) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if log != nil {
			cfg.Logger = log
		}
	}
}

// RateLimit returns middleware that gates requests through the given quota
// tracker. Every response carries X-RateLimit-Limit, X-RateLimit-Remaining,
// and X-RateLimit-Reset (seconds); denials additionally get Retry-After.
func RateLimit(tracker *quota.Tracker, opts ...RateLimitOption) func(http.Handler) http.Handler {
	cfg := &RateLimitConfig{
		Identity: ClientIP,
		OnDenied: deniedJSON,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := cfg.Identity(r)
			res := tracker.Check(identity)

			resetSecs := int64(math.Ceil(res.ResetIn.Seconds()))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(tracker.Limit()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetSecs, 10))

			if !res.Allowed {
				cfg.Logger.Info("rate limit exceeded",
					"identity", identity,
					"scope", string(res.Scope),
					"reset_in", res.ResetIn.String(),
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", strconv.FormatInt(resetSecs, 10))
				cfg.OnDenied(w, r, res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func deniedJSON(w http.ResponseWriter, r *http.Request, res quota.Result) {
	msg := "Too many requests. Try again later."
	if res.Scope == quota.ScopeGlobal {
		msg = "The service is at capacity right now. Try again later."
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":          msg,
		"scope":          string(res.Scope),
		"retry_after_ms": res.ResetIn.Milliseconds(),
	})
}
