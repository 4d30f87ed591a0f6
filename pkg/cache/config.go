package cache

import "time"

// Default TTLs applied when the corresponding config value is missing or
// non-positive. List views churn quickly, detail views are heavier to build
// and tolerate more staleness, and the not-found marker stays short so a
// freshly created resource becomes visible fast.
const (
	DefaultListTTL        = time.Minute
	DefaultDetailTTL      = 10 * time.Minute
	DefaultLeaderboardTTL = 30 * time.Second
	DefaultNotFoundTTL    = 15 * time.Second
	DefaultScanBatchSize  = 100
)

// Config holds cache layer settings.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// Redis connection URL. Empty means caching is disabled entirely:
	// every fetch computes directly against the data layer.
	RedisURL string `env:"CACHE_REDIS_URL"`

	// Per-resource TTLs.
	ListTTL        time.Duration `env:"CACHE_LIST_TTL" envDefault:"1m"`
	DetailTTL      time.Duration `env:"CACHE_DETAIL_TTL" envDefault:"10m"`
	LeaderboardTTL time.Duration `env:"CACHE_LEADERBOARD_TTL" envDefault:"30s"`

	// NotFoundTTL is how long the not-found marker is cached after a
	// compute finds nothing, preventing repeated expensive misses for
	// the same nonexistent id.
	NotFoundTTL time.Duration `env:"CACHE_NOT_FOUND_TTL" envDefault:"15s"`

	// ScanBatchSize is the COUNT hint for SCAN during pattern
	// invalidation sweeps.
	ScanBatchSize int64 `env:"CACHE_SCAN_BATCH_SIZE" envDefault:"100"`
}

// Normalize returns a copy with non-positive values clamped to the built-in
// defaults. Misconfiguration degrades to defaults instead of failing startup.
func (c Config) Normalize() Config {
	if c.ListTTL <= 0 {
		c.ListTTL = DefaultListTTL
	}
	if c.DetailTTL <= 0 {
		c.DetailTTL = DefaultDetailTTL
	}
	if c.LeaderboardTTL <= 0 {
		c.LeaderboardTTL = DefaultLeaderboardTTL
	}
	if c.NotFoundTTL <= 0 {
		c.NotFoundTTL = DefaultNotFoundTTL
	}
	if c.ScanBatchSize <= 0 {
		c.ScanBatchSize = DefaultScanBatchSize
	}
	return c
}
