package cache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestStore_ConnSingleAttempt(t *testing.T) {
	t.Parallel()

	// N concurrent first callers must share one dial, not race N of them.
	client, _ := redismock.NewClientMock()

	var dials atomic.Int32
	s := New(Config{RedisURL: "redis://localhost:6379"})
	s.dial = func(ctx context.Context) (redis.UniversalClient, error) {
		dials.Add(1)
		time.Sleep(10 * time.Millisecond)
		return client, nil
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.conn(context.Background())
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), dials.Load())
	require.NotNil(t, s.conn(context.Background()))
}

func TestStore_ConnFailureWarnsOnce(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	var dials atomic.Int32
	s := New(Config{RedisURL: "redis://localhost:6379"}, WithLogger(log))
	s.dial = func(ctx context.Context) (redis.UniversalClient, error) {
		dials.Add(1)
		return nil, errors.New("refused")
	}

	ctx := context.Background()
	require.Nil(t, s.conn(ctx))
	require.Nil(t, s.conn(ctx))
	require.Nil(t, s.conn(ctx))

	// Failure is sticky: one attempt, one warning.
	require.Equal(t, int32(1), dials.Load())
	require.Equal(t, 1, strings.Count(buf.String(), "connection failed"))

	// Close resets the state so a later use dials and warns fresh.
	require.NoError(t, s.Close())
	require.Nil(t, s.conn(ctx))
	require.Equal(t, int32(2), dials.Load())
	require.Equal(t, 2, strings.Count(buf.String(), "connection failed"))
}

func TestStore_CloseReleasesConnection(t *testing.T) {
	t.Parallel()

	var dials atomic.Int32
	s := New(Config{RedisURL: "redis://localhost:6379"})
	s.dial = func(ctx context.Context) (redis.UniversalClient, error) {
		dials.Add(1)
		client, _ := redismock.NewClientMock()
		return client, nil
	}

	ctx := context.Background()
	require.NotNil(t, s.conn(ctx))
	require.NoError(t, s.Close())

	// Next use dials again.
	require.NotNil(t, s.conn(ctx))
	require.Equal(t, int32(2), dials.Load())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close is idempotent")
}

func TestStore_Enabled(t *testing.T) {
	t.Parallel()

	require.False(t, New(Config{}).Enabled())
	require.True(t, New(Config{RedisURL: "redis://localhost:6379"}).Enabled())

	client, _ := redismock.NewClientMock()
	require.True(t, New(Config{}, WithClient(client)).Enabled())
}

func TestConfig_Normalize(t *testing.T) {
	t.Parallel()

	t.Run("clamps non-positive values to defaults", func(t *testing.T) {
		t.Parallel()

		cfg := Config{ListTTL: -time.Second, ScanBatchSize: 0}.Normalize()
		require.Equal(t, DefaultListTTL, cfg.ListTTL)
		require.Equal(t, DefaultDetailTTL, cfg.DetailTTL)
		require.Equal(t, DefaultLeaderboardTTL, cfg.LeaderboardTTL)
		require.Equal(t, DefaultNotFoundTTL, cfg.NotFoundTTL)
		require.Equal(t, int64(DefaultScanBatchSize), cfg.ScanBatchSize)
	})

	t.Run("keeps configured values", func(t *testing.T) {
		t.Parallel()

		cfg := Config{ListTTL: 5 * time.Minute, ScanBatchSize: 500}.Normalize()
		require.Equal(t, 5*time.Minute, cfg.ListTTL)
		require.Equal(t, int64(500), cfg.ScanBatchSize)
	})
}

func TestKeys(t *testing.T) {
	t.Parallel()

	t.Run("same discriminators produce the same key", func(t *testing.T) {
		t.Parallel()

		require.Equal(t, QuizListKey(ScopePublic, 1, 20), QuizListKey(ScopePublic, 1, 20))
		require.Equal(t, "quiz:list:public:1:20", QuizListKey(ScopePublic, 1, 20))
	})

	t.Run("different discriminators never collide", func(t *testing.T) {
		t.Parallel()

		keys := []string{
			QuizListKey(ScopePublic, 1, 20),
			QuizListKey(ScopeAdmin, 1, 20),
			QuizListKey(ScopePublic, 2, 20),
			QuizListKey(ScopePublic, 1, 50),
			QuizDetailKey("1"),
			LeaderboardKey("1", 1, 20),
			GlobalLeaderboardKey(1, 20),
			GenerationKey("abc123"),
		}

		seen := make(map[string]struct{}, len(keys))
		for _, k := range keys {
			_, dup := seen[k]
			require.False(t, dup, "duplicate key %q", k)
			seen[k] = struct{}{}
		}
	})
}
