package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quizora/platform/middlewares"
	"github.com/quizora/platform/pkg/quota"
)

func newLimitedServer(t *testing.T, cfg quota.Config, opts ...middlewares.RateLimitOption) http.Handler {
	t.Helper()

	cfg.CleanupInterval = -1
	tracker := quota.NewTracker(cfg)
	t.Cleanup(func() { _ = tracker.Close() })

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return middlewares.RateLimit(tracker, opts...)(next)
}

func doRequest(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/quizzes/42/play", nil)
	req.RemoteAddr = ip + ":52011"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("denies after the ceiling with headers", func(t *testing.T) {
		t.Parallel()

		h := newLimitedServer(t, quota.Config{Limit: 2, Window: time.Minute})

		rec := doRequest(h, "203.0.113.7")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

		rec = doRequest(h, "203.0.113.7")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

		rec = doRequest(h, "203.0.113.7")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "60", rec.Header().Get("Retry-After"))
		require.Contains(t, rec.Body.String(), `"scope":"user"`)
	})

	t.Run("identities are limited independently", func(t *testing.T) {
		t.Parallel()

		h := newLimitedServer(t, quota.Config{Limit: 1, Window: time.Minute})

		require.Equal(t, http.StatusOK, doRequest(h, "203.0.113.1").Code)
		require.Equal(t, http.StatusTooManyRequests, doRequest(h, "203.0.113.1").Code)
		require.Equal(t, http.StatusOK, doRequest(h, "203.0.113.2").Code)
	})

	t.Run("global exhaustion reports its scope", func(t *testing.T) {
		t.Parallel()

		h := newLimitedServer(t, quota.Config{
			Limit:        10,
			Window:       time.Hour,
			GlobalLimit:  1,
			GlobalWindow: time.Hour,
		})

		require.Equal(t, http.StatusOK, doRequest(h, "203.0.113.1").Code)

		rec := doRequest(h, "203.0.113.2")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Contains(t, rec.Body.String(), `"scope":"global"`)
	})

	t.Run("custom identity extractor", func(t *testing.T) {
		t.Parallel()

		h := newLimitedServer(t, quota.Config{Limit: 1, Window: time.Minute},
			middlewares.WithIdentity(func(r *http.Request) string {
				return r.Header.Get("X-User-ID")
			}))

		req := httptest.NewRequest(http.MethodPost, "/generate", nil)
		req.Header.Set("X-User-ID", "u1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "first forwarded-for entry wins",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"},
			want:       "203.0.113.7",
		},
		{
			name:       "single forwarded-for entry",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "real-ip fallback",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
		{
			name:       "remote addr without headers",
			remoteAddr: "203.0.113.11:9999",
			want:       "203.0.113.11",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			require.Equal(t, tc.want, middlewares.ClientIP(req))
		})
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates an id and exposes it", func(t *testing.T) {
		t.Parallel()

		var seen string
		h := middlewares.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = middlewares.GetRequestID(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, seen)
		require.Equal(t, seen, rec.Header().Get(middlewares.RequestIDHeader))
	})

	t.Run("preserves an upstream id", func(t *testing.T) {
		t.Parallel()

		h := middlewares.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middlewares.RequestIDHeader, "trace-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, "trace-123", rec.Header().Get(middlewares.RequestIDHeader))
	})
}
